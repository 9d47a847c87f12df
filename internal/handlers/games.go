package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"casino_platform/internal/game"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
	"casino_platform/pkg/validation"
)

type UpsertGameRequest struct {
	Name          string          `json:"name" validate:"required"`
	Provider      string          `json:"provider" validate:"required"`
	RTP           decimal.Decimal `json:"rtp" validate:"gt=0,lte=1"`
	MinBet        decimal.Decimal `json:"min_bet" validate:"gt=0"`
	MaxBet        decimal.Decimal `json:"max_bet" validate:"gt=0"`
	AllowsBonus   bool            `json:"allows_bonus"`
	VipMultiplier decimal.Decimal `json:"vip_multiplier" validate:"gte=0"`
	JackpotGroup  string          `json:"jackpot_group"`
	JackpotLevel  string          `json:"jackpot_level"`
	Enabled       bool            `json:"enabled"`
}

type GameHandler struct {
	games  game.Repository
	logger *logger.Logger
}

func NewGameHandler(games game.Repository, logger *logger.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

func (h *GameHandler) List(c *gin.Context) {
	games, err := h.games.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(games, "games"))
}

func (h *GameHandler) Get(c *gin.Context) {
	g, err := h.games.GetGame(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(g, "game"))
}

// Upsert creates or replaces a catalog entry. Operator admin surface.
func (h *GameHandler) Upsert(c *gin.Context) {
	var req UpsertGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if req.MaxBet.LessThan(req.MinBet) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("max_bet must not be below min_bet", nil, http.StatusBadRequest))
		return
	}

	g := &game.Game{
		GameID:        c.Param("game_id"),
		Name:          req.Name,
		Provider:      req.Provider,
		RTP:           req.RTP,
		MinBet:        req.MinBet,
		MaxBet:        req.MaxBet,
		AllowsBonus:   req.AllowsBonus,
		VipMultiplier: req.VipMultiplier,
		JackpotGroup:  req.JackpotGroup,
		JackpotLevel:  req.JackpotLevel,
		Enabled:       req.Enabled,
	}
	if err := h.games.Upsert(c.Request.Context(), g); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(g, "game saved"))
}
