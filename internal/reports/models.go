package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyOperatorSummary is one operator's settled activity for one UTC
// day, rebuilt by the nightly rollup. Re-running a rollup overwrites
// the day's row rather than appending.
type DailyOperatorSummary struct {
	Day                 time.Time       `gorm:"column:day;type:date;primaryKey" json:"day"`
	OperatorID          string          `gorm:"column:operator_id;type:varchar(64);primaryKey" json:"operator_id"`
	BetCount            int64           `gorm:"column:bet_count;not null" json:"bet_count"`
	UniquePlayers       int64           `gorm:"column:unique_players;not null" json:"unique_players"`
	TotalWagered        decimal.Decimal `gorm:"column:total_wagered;type:numeric(20,2);not null" json:"total_wagered"`
	TotalWon            decimal.Decimal `gorm:"column:total_won;type:numeric(20,2);not null" json:"total_won"`
	GGR                 decimal.Decimal `gorm:"column:ggr;type:numeric(20,2);not null" json:"ggr"`
	JackpotContribution decimal.Decimal `gorm:"column:jackpot_contribution;type:numeric(20,2);not null" json:"jackpot_contribution"`
	CashbackPaid        decimal.Decimal `gorm:"column:cashback_paid;type:numeric(20,2);not null" json:"cashback_paid"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (DailyOperatorSummary) TableName() string {
	return "daily_operator_summaries"
}
