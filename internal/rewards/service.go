package rewards

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"casino_platform/internal/bonus"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
)

// BonusGranter is the slice of the bonus service used to hand out
// free-spin and level-up awards.
type BonusGranter interface {
	GrantBonus(ctx context.Context, req bonus.GrantRequest) (*bonus.Task, error)
}

// LevelSource resolves tier numbers into their configured benefits.
type LevelSource interface {
	LevelInfo(level int) (vip.Level, bool)
}

// WalletLedger is the tx-scoped credit used for cashback, which runs
// inside the settlement transaction.
type WalletLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error)
}

type Service struct {
	bonuses        BonusGranter
	levels         LevelSource
	wallets        WalletLedger
	spinValue      decimal.Decimal
	wageringFactor decimal.Decimal
	logger         *logger.Logger
}

func NewService(bonuses BonusGranter, levels LevelSource, wallets WalletLedger, spinValue, wageringFactor decimal.Decimal, log *logger.Logger) *Service {
	return &Service{
		bonuses:        bonuses,
		levels:         levels,
		wallets:        wallets,
		spinValue:      spinValue,
		wageringFactor: wageringFactor,
		logger:         log,
	}
}

// GrantFreeSpins awards spins as bonus money: spins times the
// configured per-spin value, wagering requirement attached. Idempotent
// per reference.
func (s *Service) GrantFreeSpins(ctx context.Context, userID, operatorID string, spins int, source, referenceID string) (*bonus.Task, error) {
	if spins <= 0 {
		return nil, fmt.Errorf("free spin count must be positive, got %d", spins)
	}

	amount := s.spinValue.Mul(decimal.NewFromInt(int64(spins)))
	task, err := s.bonuses.GrantBonus(ctx, bonus.GrantRequest{
		UserID:             userID,
		OperatorID:         operatorID,
		Amount:             amount,
		WageringMultiplier: s.wageringFactor,
		Source:             source,
		ReferenceID:        referenceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grant free spins: %w", err)
	}

	s.logger.Infof("free spins granted user=%s operator=%s spins=%d amount=%s ref=%s",
		userID, operatorID, spins, amount, referenceID)
	return task, nil
}

// ApplyLevelUpReward hands out the free-spin allowance of the reached
// tier. Runs from the worker, at least once; the grant reference keeps
// retries from double-awarding.
func (s *Service) ApplyLevelUpReward(ctx context.Context, userID, operatorID string, level int, referenceID string) (*bonus.Task, error) {
	tier, ok := s.levels.LevelInfo(level)
	if !ok {
		return nil, fmt.Errorf("unknown vip level %d", level)
	}
	if tier.FreeSpinsPerMonth <= 0 {
		s.logger.Infof("level %d has no free spin reward, nothing to apply user=%s", level, userID)
		return nil, nil
	}

	ref := fmt.Sprintf("levelup:%d:%s", level, referenceID)
	return s.GrantFreeSpins(ctx, userID, operatorID, tier.FreeSpinsPerMonth, bonus.SourceLevelUpReward, ref)
}

// ApplyCashback credits a slice of a net loss back to the real
// balance. Called inside the settlement transaction.
func (s *Service) ApplyCashback(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, referenceID string) error {
	if !amount.IsPositive() {
		return nil
	}
	if _, _, err := s.wallets.Credit(ctx, tx, userID, operatorID, amount, wallet.BalanceReal, wallet.SubjectCashback, referenceID); err != nil {
		return fmt.Errorf("failed to apply cashback: %w", err)
	}
	return nil
}
