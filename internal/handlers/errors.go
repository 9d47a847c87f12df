package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"casino_platform/internal/bonus"
	"casino_platform/internal/database"
	"casino_platform/internal/game"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/settlement"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
	"casino_platform/pkg/validation"
)

var errBadDate = errors.New("dates must be YYYY-MM-DD")

// statusFor maps domain errors onto HTTP statuses. Unknown errors are
// internal.
func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, settlement.ErrWagerOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, settlement.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, jackpot.ErrPoolNotFound),
		errors.Is(err, bonus.ErrTaskNotFound),
		errors.Is(err, settlement.ErrBetNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrTxConflict),
		errors.Is(err, bonus.ErrTaskCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		c.JSON(status, common.NewErrorResponse("validation failed", validation.FormatValidationError(err), status))
		return
	}
	c.JSON(status, common.NewErrorResponse(err.Error(), nil, status))
}

func pageQuery(c *gin.Context) (int, int) {
	page := atoiDefault(c.Query("page"), 1)
	limit := atoiDefault(c.Query("limit"), 20)
	return common.PageParams(page, limit)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
