package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"casino_platform/internal/bonus"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
)

// LoyaltyDirectory lists VIP accounts and resolves their tier.
type LoyaltyDirectory interface {
	Accounts(ctx context.Context) ([]vip.Account, error)
	LevelFor(xp decimal.Decimal) vip.Level
}

type WalletDirectory interface {
	ListByUser(ctx context.Context, userID string) ([]wallet.Wallet, error)
}

type SpinGranter interface {
	GrantFreeSpins(ctx context.Context, userID, operatorID string, spins int, source, referenceID string) (*bonus.Task, error)
}

type DailyRollup interface {
	RollupDay(ctx context.Context, at time.Time) (int, error)
}

// Scheduler owns the recurring jobs: monthly VIP free spins on the 1st
// and the nightly report rollup.
type Scheduler struct {
	cron    *cron.Cron
	loyalty LoyaltyDirectory
	wallets WalletDirectory
	spins   SpinGranter
	rollup  DailyRollup
	logger  *logger.Logger
}

func New(loyalty LoyaltyDirectory, wallets WalletDirectory, spins SpinGranter, rollup DailyRollup, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		loyalty: loyalty,
		wallets: wallets,
		spins:   spins,
		rollup:  rollup,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 1 * *", s.runMonthlyFreeSpins); err != nil {
		return fmt.Errorf("failed to schedule monthly free spins: %w", err)
	}
	if _, err := s.cron.AddFunc("30 0 * * *", s.runDailyRollup); err != nil {
		return fmt.Errorf("failed to schedule daily rollup: %w", err)
	}
	s.cron.Start()
	s.logger.Infof("scheduler started: free spins on the 1st 00:00, rollup daily 00:30")
	return nil
}

// Stop halts scheduling and returns a context that closes once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runMonthlyFreeSpins() {
	granted, err := s.GrantMonthlyFreeSpins(context.Background(), time.Now().UTC())
	if err != nil {
		s.logger.Errorf("monthly free spins run failed: %v", err)
		return
	}
	s.logger.Infof("monthly free spins run granted %d allowances", granted)
}

// GrantMonthlyFreeSpins hands every qualifying VIP their tier's spin
// allowance, once per wallet per month. The per-month reference makes
// reruns harmless.
func (s *Scheduler) GrantMonthlyFreeSpins(ctx context.Context, month time.Time) (int, error) {
	accounts, err := s.loyalty.Accounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list vip accounts: %w", err)
	}

	granted := 0
	for _, acct := range accounts {
		tier := s.loyalty.LevelFor(acct.Experience)
		if tier.FreeSpinsPerMonth <= 0 {
			continue
		}
		wallets, err := s.wallets.ListByUser(ctx, acct.UserID)
		if err != nil {
			s.logger.Errorf("free spins: listing wallets for user %s failed: %v", acct.UserID, err)
			continue
		}
		for _, w := range wallets {
			ref := monthlyRef(month, w.WalletID)
			if _, err := s.spins.GrantFreeSpins(ctx, w.UserID, w.OperatorID, tier.FreeSpinsPerMonth, bonus.SourceFreeSpins, ref); err != nil {
				s.logger.Errorf("free spins: grant for wallet %s failed: %v", w.WalletID, err)
				continue
			}
			granted++
		}
	}
	return granted, nil
}

func (s *Scheduler) runDailyRollup() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	if _, err := s.rollup.RollupDay(context.Background(), yesterday); err != nil {
		s.logger.Errorf("daily rollup failed: %v", err)
	}
}

func monthlyRef(month time.Time, walletID string) string {
	return fmt.Sprintf("freespins:%s:%s", month.UTC().Format("2006-01"), walletID)
}
