package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/jackpot"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

type JackpotHandler struct {
	pools  jackpot.Repository
	logger *logger.Logger
}

func NewJackpotHandler(pools jackpot.Repository, logger *logger.Logger) *JackpotHandler {
	return &JackpotHandler{pools: pools, logger: logger}
}

func (h *JackpotHandler) ListPools(c *gin.Context) {
	pools, err := h.pools.ListPools(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(pools, "jackpot pools"))
}

// PoolValue reports one pool's current value; a missing or inactive
// pool reads as null rather than an error.
func (h *JackpotHandler) PoolValue(c *gin.Context) {
	group, level := c.Param("group"), c.Param("level")

	p, err := h.pools.GetPool(c.Request.Context(), group, level)
	if err != nil {
		if errors.Is(err, jackpot.ErrPoolNotFound) {
			c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
				"group": group,
				"level": level,
				"value": nil,
			}, "jackpot value"))
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"group": p.GroupName,
		"level": p.Level,
		"value": p.CurrentValue,
	}, "jackpot value"))
}

func (h *JackpotHandler) RecentWins(c *gin.Context) {
	limit := atoiDefault(c.Query("limit"), 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	wins, err := h.pools.RecentWins(c.Request.Context(), c.Param("group"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(wins, "recent jackpot wins"))
}
