package vip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account accumulates lifetime experience per user across all
// operators. Experience only ever grows.
type Account struct {
	UserID     string          `gorm:"column:user_id;primaryKey;type:uuid" json:"user_id"`
	Experience decimal.Decimal `gorm:"column:experience;type:numeric(20,2);not null;default:0" json:"experience"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Account) TableName() string {
	return "vip_accounts"
}

// Level is a row of the static tier table. A user sits at the highest
// level whose threshold their experience has reached.
type Level struct {
	Level             int             `gorm:"column:level;primaryKey" json:"level"`
	Name              string          `gorm:"column:name;type:varchar(32);not null" json:"name"`
	XPThreshold       decimal.Decimal `gorm:"column:xp_threshold;type:numeric(20,2);not null" json:"xp_threshold"`
	CashbackRate      decimal.Decimal `gorm:"column:cashback_rate;type:numeric(6,5);not null" json:"cashback_rate"`
	FreeSpinsPerMonth int             `gorm:"column:free_spins_per_month;not null;default:0" json:"free_spins_per_month"`
}

func (Level) TableName() string {
	return "vip_levels"
}

type XPResult struct {
	PointsAdded decimal.Decimal `json:"points_added"`
	Experience  decimal.Decimal `json:"experience"`
	PrevLevel   int             `json:"prev_level"`
	NewLevel    int             `json:"new_level"`
	LevelName   string          `json:"level_name"`
	LeveledUp   bool            `json:"leveled_up"`
}

type Profile struct {
	UserID            string           `json:"user_id"`
	Experience        decimal.Decimal  `json:"experience"`
	Level             int              `json:"level"`
	LevelName         string           `json:"level_name"`
	CashbackRate      decimal.Decimal  `json:"cashback_rate"`
	FreeSpinsPerMonth int              `json:"free_spins_per_month"`
	NextLevelXP       *decimal.Decimal `json:"next_level_xp,omitempty"`
}
