package game

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game is a catalog row. RTP and wager bounds drive settlement;
// JackpotGroup/JackpotLevel tie the game to its progressive pools.
type Game struct {
	GameID        string          `gorm:"column:game_id;primaryKey;type:varchar(64)" json:"game_id"`
	Name          string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Provider      string          `gorm:"column:provider;type:varchar(64);not null" json:"provider"`
	RTP           decimal.Decimal `gorm:"column:rtp;type:numeric(6,4);not null" json:"rtp"`
	MinBet        decimal.Decimal `gorm:"column:min_bet;type:numeric(20,2);not null" json:"min_bet"`
	MaxBet        decimal.Decimal `gorm:"column:max_bet;type:numeric(20,2);not null" json:"max_bet"`
	AllowsBonus   bool            `gorm:"column:allows_bonus;not null;default:true" json:"allows_bonus"`
	VipMultiplier decimal.Decimal `gorm:"column:vip_multiplier;type:numeric(8,4);not null;default:1" json:"vip_multiplier"`
	JackpotGroup  string          `gorm:"column:jackpot_group;type:varchar(64)" json:"jackpot_group,omitempty"`
	JackpotLevel  string          `gorm:"column:jackpot_level;type:varchar(32)" json:"jackpot_level,omitempty"`
	Enabled       bool            `gorm:"column:enabled;not null;default:true" json:"enabled"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}
