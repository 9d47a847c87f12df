package bonus

import (
	"time"

	"github.com/shopspring/decimal"
)

// Grant sources. The source never changes behavior, it only records
// where the bonus came from.
const (
	SourceDepositBonus  = "deposit_bonus"
	SourceFreeSpins     = "free_spins"
	SourceLevelUpReward = "level_up_reward"
	SourceManual        = "manual"
)

// Task tracks one granted bonus through its wagering requirement.
// Active tasks either complete (requirement met, remainder converts to
// real money) or are deleted (bonus balance dropped below the game's
// minimum bet). Both outcomes are terminal.
type Task struct {
	TaskID           string          `gorm:"column:task_id;primaryKey;type:uuid" json:"task_id"`
	UserID           string          `gorm:"column:user_id;type:uuid;not null;index:idx_bonus_tasks_user_operator" json:"user_id"`
	OperatorID       string          `gorm:"column:operator_id;type:varchar(64);not null;index:idx_bonus_tasks_user_operator" json:"operator_id"`
	Source           string          `gorm:"column:source;type:varchar(30);not null" json:"source"`
	AwardedAmount    decimal.Decimal `gorm:"column:awarded_amount;type:numeric(20,2);not null" json:"awarded_amount"`
	WageringRequired decimal.Decimal `gorm:"column:wagering_required;type:numeric(20,2);not null" json:"wagering_required"`
	Wagered          decimal.Decimal `gorm:"column:wagered;type:numeric(20,2);not null;default:0" json:"wagered"`
	IsCompleted      bool            `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	ReferenceID      string          `gorm:"column:reference_id;type:varchar(255);not null;uniqueIndex" json:"reference_id"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
	CompletedAt      *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Task) TableName() string {
	return "bonus_tasks"
}

type GrantRequest struct {
	UserID             string          `json:"user_id" validate:"required"`
	OperatorID         string          `json:"operator_id" validate:"required"`
	Amount             decimal.Decimal `json:"amount" validate:"gt=0"`
	WageringMultiplier decimal.Decimal `json:"wagering_multiplier" validate:"gt=0"`
	Source             string          `json:"source" validate:"required,oneof=deposit_bonus free_spins level_up_reward manual"`
	ReferenceID        string          `json:"reference_id" validate:"required"`
}

// ProgressDelta reports what a single bonus-funded wager did to the
// task that absorbed it.
type ProgressDelta struct {
	TaskID          string          `json:"task_id"`
	WageredBefore   decimal.Decimal `json:"wagered_before"`
	Wagered         decimal.Decimal `json:"wagered"`
	Required        decimal.Decimal `json:"required"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Completed       bool            `json:"completed"`
	Deleted         bool            `json:"deleted"`
}

type TaskProgress struct {
	TaskID             string          `json:"task_id"`
	Source             string          `json:"source"`
	AwardedAmount      decimal.Decimal `json:"awarded_amount"`
	WageringRequired   decimal.Decimal `json:"wagering_required"`
	Wagered            decimal.Decimal `json:"wagered"`
	PercentageComplete float64         `json:"percentage_complete"`
	IsCompleted        bool            `json:"is_completed"`
	CreatedAt          time.Time       `json:"created_at"`
}
