package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"casino_platform/internal/notify"
)

// Task Types
const (
	TypeNotifyUser    = "notify:user"
	TypeNotifyAdmins  = "notify:operator-admins"
	TypeLevelUpReward = "reward:level-up"
)

type NotifyUserPayload struct {
	UserID string       `json:"user_id"`
	Event  notify.Event `json:"event"`
}

type NotifyAdminsPayload struct {
	OperatorID string       `json:"operator_id"`
	Event      notify.Event `json:"event"`
}

type LevelUpRewardPayload struct {
	UserID      string `json:"user_id"`
	OperatorID  string `json:"operator_id"`
	Level       int    `json:"level"`
	ReferenceID string `json:"reference_id"`
}

// Task Creators

func NewNotifyUserTask(payload NotifyUserPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotifyUser, data), nil
}

func NewNotifyAdminsTask(payload NotifyAdminsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotifyAdmins, data), nil
}

func NewLevelUpRewardTask(payload LevelUpRewardPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLevelUpReward, data), nil
}
