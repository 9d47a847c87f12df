package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/settlement"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

type BetHandler struct {
	settlements *settlement.Service
	logger      *logger.Logger
}

func NewBetHandler(settlements *settlement.Service, logger *logger.Logger) *BetHandler {
	return &BetHandler{settlements: settlements, logger: logger}
}

// PlaceBet settles one wager atomically and returns the result.
func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req settlement.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}

	res, err := h.settlements.PlaceBet(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "bet settled"))
}

func (h *BetHandler) GetBet(c *gin.Context) {
	rec, err := h.settlements.GetBet(c.Request.Context(), c.Param("bet_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(rec, "bet"))
}

func (h *BetHandler) ListUserBets(c *gin.Context) {
	userID := c.Param("user_id")
	operatorID := c.Query("operator_id")
	if operatorID == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("operator_id is required", nil, http.StatusBadRequest))
		return
	}
	page, limit := pageQuery(c)

	recs, total, err := h.settlements.ListBets(c.Request.Context(), userID, operatorID, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.PaginateResponse(recs, total, page, limit, "bets"))
}
