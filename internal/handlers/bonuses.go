package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/bonus"
	"casino_platform/internal/notify"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

// UserNotifier pushes an event to one player, best effort.
type UserNotifier interface {
	NotifyUser(userID string, event notify.Event)
}

type BonusHandler struct {
	bonuses  *bonus.Service
	notifier UserNotifier
	logger   *logger.Logger
}

func NewBonusHandler(bonuses *bonus.Service, notifier UserNotifier, logger *logger.Logger) *BonusHandler {
	return &BonusHandler{bonuses: bonuses, notifier: notifier, logger: logger}
}

// Grant awards a bonus and its wagering task. Idempotent per reference.
func (h *BonusHandler) Grant(c *gin.Context) {
	var req bonus.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid request body", err.Error(), http.StatusBadRequest))
		return
	}

	task, err := h.bonuses.GrantBonus(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.notifier.NotifyUser(task.UserID, notify.NewEvent(notify.EventBonusGranted, task.UserID, task.OperatorID, map[string]interface{}{
		"task_id": task.TaskID,
		"amount":  task.AwardedAmount.String(),
		"source":  task.Source,
	}))
	c.JSON(http.StatusCreated, common.NewSuccessResponse(task, "bonus granted"))
}

func (h *BonusHandler) GetTask(c *gin.Context) {
	task, err := h.bonuses.GetTask(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(task, "bonus task"))
}

// Progress lists a wallet's active wagering tasks.
func (h *BonusHandler) Progress(c *gin.Context) {
	userID := c.Param("user_id")
	operatorID := c.Query("operator_id")
	if operatorID == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("operator_id is required", nil, http.StatusBadRequest))
		return
	}

	progress, err := h.bonuses.Progress(c.Request.Context(), userID, operatorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(progress, "wagering progress"))
}
