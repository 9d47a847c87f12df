package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"casino_platform/pkg/logger"
)

type Service struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewService(db *gorm.DB, logger *logger.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type rollupRow struct {
	OperatorID          string
	BetCount            int64
	UniquePlayers       int64
	TotalWagered        decimal.Decimal
	TotalWon            decimal.Decimal
	GGR                 decimal.Decimal
	JackpotContribution decimal.Decimal
	CashbackPaid        decimal.Decimal
}

// RollupDay rebuilds every operator's summary for the UTC day that
// contains the given time. Returns the number of operator rows written.
func (s *Service) RollupDay(ctx context.Context, at time.Time) (int, error) {
	from, to := dayBounds(at)

	var rows []rollupRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT operator_id,
		       COUNT(*)                       AS bet_count,
		       COUNT(DISTINCT user_id)        AS unique_players,
		       COALESCE(SUM(wager), 0)        AS total_wagered,
		       COALESCE(SUM(win_amount), 0)   AS total_won,
		       COALESCE(SUM(ggr), 0)          AS ggr,
		       COALESCE(SUM(jackpot_contribution), 0) AS jackpot_contribution,
		       COALESCE(SUM(cashback_amount), 0)      AS cashback_paid
		FROM bets
		WHERE created_at >= ? AND created_at < ?
		GROUP BY operator_id`, from, to).
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate bets for %s: %w", from.Format("2006-01-02"), err)
	}

	for _, row := range rows {
		summary := DailyOperatorSummary{
			Day:                 from,
			OperatorID:          row.OperatorID,
			BetCount:            row.BetCount,
			UniquePlayers:       row.UniquePlayers,
			TotalWagered:        row.TotalWagered,
			TotalWon:            row.TotalWon,
			GGR:                 row.GGR,
			JackpotContribution: row.JackpotContribution,
			CashbackPaid:        row.CashbackPaid,
			UpdatedAt:           time.Now().UTC(),
		}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "day"}, {Name: "operator_id"}},
				UpdateAll: true,
			}).
			Create(&summary).Error
		if err != nil {
			return 0, fmt.Errorf("failed to upsert summary for operator %s: %w", row.OperatorID, err)
		}
	}

	s.logger.Infof("daily rollup for %s wrote %d operator summaries", from.Format("2006-01-02"), len(rows))
	return len(rows), nil
}

// OperatorSummaries returns an operator's daily rows between from and
// to inclusive, newest first.
func (s *Service) OperatorSummaries(ctx context.Context, operatorID string, from, to time.Time) ([]DailyOperatorSummary, error) {
	var out []DailyOperatorSummary
	err := s.db.WithContext(ctx).
		Where("operator_id = ? AND day >= ? AND day <= ?", operatorID, from, to).
		Order("day DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return out, nil
}

// OperatorGGR totals an operator's gross gaming revenue straight from
// the bets table, so it also covers days not yet rolled up.
func (s *Service) OperatorGGR(ctx context.Context, operatorID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(ggr), 0)
		FROM bets
		WHERE operator_id = ? AND created_at >= ? AND created_at < ?`,
		operatorID, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total ggr: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// dayBounds returns the half-open UTC day [from, to) containing at.
func dayBounds(at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	from := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}
