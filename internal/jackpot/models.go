package jackpot

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pool is one progressive jackpot level inside a group. Every wager on
// a game linked to the group feeds CurrentValue by ContributionRate.
type Pool struct {
	PoolID           string          `gorm:"column:pool_id;primaryKey;type:uuid" json:"pool_id"`
	GroupName        string          `gorm:"column:group_name;type:varchar(64);not null;uniqueIndex:idx_pools_group_level" json:"group_name"`
	Level            string          `gorm:"column:level;type:varchar(32);not null;uniqueIndex:idx_pools_group_level" json:"level"` // "mini", "minor", "major", "grand"
	SeedValue        decimal.Decimal `gorm:"column:seed_value;type:numeric(20,2);not null" json:"seed_value"`
	CurrentValue     decimal.Decimal `gorm:"column:current_value;type:numeric(20,2);not null" json:"current_value"`
	ContributionRate decimal.Decimal `gorm:"column:contribution_rate;type:numeric(6,5);not null" json:"contribution_rate"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

// Win records a jackpot payout. The paid amount also appears in the
// winning bet's record; this table is the per-pool history.
type Win struct {
	WinID      string          `gorm:"column:win_id;primaryKey;type:uuid" json:"win_id"`
	PoolID     string          `gorm:"column:pool_id;type:uuid;not null;index" json:"pool_id"`
	GroupName  string          `gorm:"column:group_name;type:varchar(64);not null" json:"group_name"`
	Level      string          `gorm:"column:level;type:varchar(32);not null" json:"level"`
	UserID     string          `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	OperatorID string          `gorm:"column:operator_id;type:varchar(64);not null" json:"operator_id"`
	BetID      string          `gorm:"column:bet_id;type:uuid;not null" json:"bet_id"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}
