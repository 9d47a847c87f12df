package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"casino_platform/internal/bonus"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
)

// BetRecord is the append-only audit row written by every successful
// settlement. RealBefore/RealAfter and BonusBefore/BonusAfter bracket
// the wager debit and win credit only, so that post - pre always equals
// win - wager on the balance the bet used. Conversion and cashback
// credits land after that bracket and carry their own ledger entries.
type BetRecord struct {
	BetID               string              `gorm:"column:bet_id;primaryKey;type:uuid" json:"bet_id"`
	UserID              string              `gorm:"column:user_id;type:uuid;not null;index:idx_bets_user_operator" json:"user_id"`
	OperatorID          string              `gorm:"column:operator_id;type:varchar(64);not null;index:idx_bets_user_operator" json:"operator_id"`
	GameID              string              `gorm:"column:game_id;type:varchar(64);not null;index" json:"game_id"`
	BetType             wallet.BalanceKind  `gorm:"column:bet_type;type:varchar(10);not null" json:"bet_type"`
	Wager               decimal.Decimal     `gorm:"column:wager;type:numeric(20,2);not null" json:"wager"`
	WinAmount           decimal.Decimal     `gorm:"column:win_amount;type:numeric(20,2);not null" json:"win_amount"`
	Multiplier          decimal.Decimal     `gorm:"column:multiplier;type:numeric(10,4);not null" json:"multiplier"`
	OutcomeLabel        string              `gorm:"column:outcome_label;type:varchar(20);not null" json:"outcome_label"`
	JackpotWin          decimal.Decimal     `gorm:"column:jackpot_win;type:numeric(20,2);not null;default:0" json:"jackpot_win"`
	JackpotContribution decimal.Decimal     `gorm:"column:jackpot_contribution;type:numeric(20,2);not null;default:0" json:"jackpot_contribution"`
	VipPointsAdded      decimal.Decimal     `gorm:"column:vip_points_added;type:numeric(20,2);not null;default:0" json:"vip_points_added"`
	CashbackAmount      decimal.Decimal     `gorm:"column:cashback_amount;type:numeric(20,2);not null;default:0" json:"cashback_amount"`
	GGR                 decimal.Decimal     `gorm:"column:ggr;type:numeric(20,2);not null" json:"ggr"`
	RealBefore          decimal.Decimal     `gorm:"column:real_before;type:numeric(20,2);not null" json:"real_before"`
	BonusBefore         decimal.Decimal     `gorm:"column:bonus_before;type:numeric(20,2);not null" json:"bonus_before"`
	RealAfter           decimal.Decimal     `gorm:"column:real_after;type:numeric(20,2);not null" json:"real_after"`
	BonusAfter          decimal.Decimal     `gorm:"column:bonus_after;type:numeric(20,2);not null" json:"bonus_after"`
	WageringTaskID      *string             `gorm:"column:wagering_task_id;type:uuid" json:"wagering_task_id,omitempty"`
	WageringProgress    decimal.NullDecimal `gorm:"column:wagering_progress;type:numeric(20,2)" json:"wagering_progress,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (BetRecord) TableName() string {
	return "bets"
}

type PlaceBetRequest struct {
	UserID     string          `json:"user_id" validate:"required"`
	OperatorID string          `json:"operator_id" validate:"required"`
	GameID     string          `json:"game_id" validate:"required"`
	Wager      decimal.Decimal `json:"wager" validate:"gt=0"`
}

// SettlementResult is what PlaceBet hands back to the caller.
// RealBalance/BonusBalance are the wallet's final balances after every
// credit of the settlement, conversion and cashback included.
type SettlementResult struct {
	BetID               string               `json:"bet_id"`
	UserID              string               `json:"user_id"`
	OperatorID          string               `json:"operator_id"`
	GameID              string               `json:"game_id"`
	BetType             wallet.BalanceKind   `json:"bet_type"`
	Wager               decimal.Decimal      `json:"wager"`
	WinAmount           decimal.Decimal      `json:"win_amount"`
	Multiplier          decimal.Decimal      `json:"multiplier"`
	OutcomeLabel        string               `json:"outcome_label"`
	JackpotWin          decimal.Decimal      `json:"jackpot_win"`
	JackpotContribution decimal.Decimal      `json:"jackpot_contribution"`
	Cashback            decimal.Decimal      `json:"cashback"`
	RealBalance         decimal.Decimal      `json:"real_balance"`
	BonusBalance        decimal.Decimal      `json:"bonus_balance"`
	VIP                 *vip.XPResult        `json:"vip,omitempty"`
	Wagering            *bonus.ProgressDelta `json:"wagering,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}
