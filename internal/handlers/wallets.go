package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/wallet"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

type WalletHandler struct {
	wallets *wallet.Service
	logger  *logger.Logger
}

func NewWalletHandler(wallets *wallet.Service, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{wallets: wallets, logger: logger}
}

func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req wallet.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}

	w, err := h.wallets.CreateWallet(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(w, "wallet created"))
}

func (h *WalletHandler) GetBalances(c *gin.Context) {
	w, err := h.wallets.GetBalances(c.Request.Context(), c.Param("user_id"), c.Param("operator_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(w, "balances"))
}

func (h *WalletHandler) ListUserWallets(c *gin.Context) {
	wallets, err := h.wallets.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(wallets, "wallets"))
}

// Deposit credits real money. Replays of the same reference return the
// original result.
func (h *WalletHandler) Deposit(c *gin.Context) {
	var req wallet.FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}

	res, err := h.wallets.Deposit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "deposit applied"))
}

// Withdraw debits real money only; bonus funds are never withdrawable.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req wallet.FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}

	res, err := h.wallets.Withdraw(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "withdrawal applied"))
}

func (h *WalletHandler) ListEntries(c *gin.Context) {
	page, limit := pageQuery(c)
	entries, total, err := h.wallets.Entries(c.Request.Context(), c.Param("user_id"), c.Param("operator_id"), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.PaginateResponse(entries, total, page, limit, "ledger entries"))
}
