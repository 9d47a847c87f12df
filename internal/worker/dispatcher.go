package worker

import (
	"github.com/hibiken/asynq"

	"casino_platform/internal/notify"
	"casino_platform/pkg/logger"
)

// Dispatcher enqueues post-settlement side effects onto the task queue.
// Settlement never blocks on delivery: enqueue failures are logged and
// dropped for notifications, which are best-effort by contract.
type Dispatcher struct {
	client *asynq.Client
	logger *logger.Logger
}

func NewDispatcher(client *asynq.Client, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

func (d *Dispatcher) NotifyUser(userID string, event notify.Event) {
	task, err := NewNotifyUserTask(NotifyUserPayload{UserID: userID, Event: event})
	if err != nil {
		d.logger.Errorf("could not create notify:user task: %v", err)
		return
	}
	if _, err := d.client.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3)); err != nil {
		d.logger.Errorf("could not enqueue notify:user task for user %s: %v", userID, err)
	}
}

func (d *Dispatcher) NotifyOperatorAdmins(operatorID string, event notify.Event) {
	task, err := NewNotifyAdminsTask(NotifyAdminsPayload{OperatorID: operatorID, Event: event})
	if err != nil {
		d.logger.Errorf("could not create notify:operator-admins task: %v", err)
		return
	}
	if _, err := d.client.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3)); err != nil {
		d.logger.Errorf("could not enqueue notify:operator-admins task for operator %s: %v", operatorID, err)
	}
}

// QueueLevelUpReward schedules the reward grant for a level-up. The grant
// itself is idempotent by reference, so the task may be retried safely.
func (d *Dispatcher) QueueLevelUpReward(userID, operatorID string, level int, referenceID string) {
	task, err := NewLevelUpRewardTask(LevelUpRewardPayload{
		UserID:      userID,
		OperatorID:  operatorID,
		Level:       level,
		ReferenceID: referenceID,
	})
	if err != nil {
		d.logger.Errorf("could not create reward:level-up task: %v", err)
		return
	}
	if _, err := d.client.Enqueue(task, asynq.Queue("critical"), asynq.MaxRetry(5)); err != nil {
		d.logger.Errorf("could not enqueue reward:level-up task for user %s: %v", userID, err)
	}
}
