package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/vip"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

type VIPHandler struct {
	vips   *vip.Service
	logger *logger.Logger
}

func NewVIPHandler(vips *vip.Service, logger *logger.Logger) *VIPHandler {
	return &VIPHandler{vips: vips, logger: logger}
}

// Profile returns the user's experience, tier and benefits. Users who
// never wagered read as level zero.
func (h *VIPHandler) Profile(c *gin.Context) {
	profile, err := h.vips.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(profile, "vip profile"))
}

func (h *VIPHandler) Levels(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(h.vips.LevelTable(), "vip levels"))
}
