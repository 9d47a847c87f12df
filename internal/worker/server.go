package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"casino_platform/internal/notify"
	"casino_platform/internal/rewards"
	"casino_platform/pkg/logger"
)

// RewardApplier grants the reward attached to a VIP level-up.
type RewardApplier interface {
	ApplyLevelUpReward(ctx context.Context, userID, operatorID string, level int, referenceID string) error
}

type rewardAdapter struct {
	svc *rewards.Service
}

func (a rewardAdapter) ApplyLevelUpReward(ctx context.Context, userID, operatorID string, level int, referenceID string) error {
	_, err := a.svc.ApplyLevelUpReward(ctx, userID, operatorID, level, referenceID)
	return err
}

// Worker consumes queued tasks and performs the delivery work that must not
// run inside settlement transactions.
type Worker struct {
	publisher *notify.Publisher
	telegram  *notify.TelegramNotifier
	rewards   RewardApplier
	logger    *logger.Logger
}

func NewWorker(publisher *notify.Publisher, telegram *notify.TelegramNotifier, rewardSvc *rewards.Service, logger *logger.Logger) *Worker {
	return &Worker{
		publisher: publisher,
		telegram:  telegram,
		rewards:   rewardAdapter{svc: rewardSvc},
		logger:    logger,
	}
}

// HandleNotifyUserTask publishes the event to the user's channel. Delivery is
// at most once: a failed publish is logged, never retried.
func (w *Worker) HandleNotifyUserTask(ctx context.Context, t *asynq.Task) error {
	var p NotifyUserPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.publisher.PublishUserEvent(ctx, p.Event); err != nil {
		w.logger.Errorf("publish user event %s for user %s failed: %v", p.Event.Kind, p.UserID, err)
	}
	return nil
}

// HandleNotifyAdminsTask fans the event out to the operator admin channel and,
// when configured, to the Telegram admin chat. Same at-most-once contract.
func (w *Worker) HandleNotifyAdminsTask(ctx context.Context, t *asynq.Task) error {
	var p NotifyAdminsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.publisher.PublishAdminEvent(ctx, p.Event); err != nil {
		w.logger.Errorf("publish admin event %s for operator %s failed: %v", p.Event.Kind, p.OperatorID, err)
	}
	if err := w.telegram.SendAdminEvent(p.Event); err != nil {
		w.logger.Errorf("telegram admin event %s failed: %v", p.Event.Kind, err)
	}
	return nil
}

// HandleLevelUpRewardTask grants the level-up reward. Errors propagate so the
// queue retries; the grant is idempotent by reference.
func (w *Worker) HandleLevelUpRewardTask(ctx context.Context, t *asynq.Task) error {
	var p LevelUpRewardPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.rewards.ApplyLevelUpReward(ctx, p.UserID, p.OperatorID, p.Level, p.ReferenceID); err != nil {
		return fmt.Errorf("apply level-up reward for user %s: %w", p.UserID, err)
	}
	w.logger.Infof("level-up reward granted: user=%s level=%d ref=%s", p.UserID, p.Level, p.ReferenceID)
	return nil
}

// StartWorker runs the task server until it is stopped. Blocking.
func StartWorker(redisOpt asynq.RedisClientOpt, worker *Worker, concurrency int) error {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotifyUser, worker.HandleNotifyUserTask)
	mux.HandleFunc(TypeNotifyAdmins, worker.HandleNotifyAdminsTask)
	mux.HandleFunc(TypeLevelUpReward, worker.HandleLevelUpRewardTask)

	if err := srv.Run(mux); err != nil {
		return fmt.Errorf("could not run task server: %w", err)
	}
	return nil
}
