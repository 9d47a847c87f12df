package bonus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
	"casino_platform/pkg/validation"
)

// WalletLedger is the slice of the wallet repository the bonus flow
// needs: creating wallets on first grant and crediting balances.
type WalletLedger interface {
	Create(ctx context.Context, userID, operatorID, currency string) (*wallet.Wallet, error)
	Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error)
}

type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	repo            Repository
	wallets         WalletLedger
	tx              TxRunner
	defaultCurrency string
	logger          *logger.Logger
}

func NewService(repo Repository, wallets WalletLedger, tx TxRunner, defaultCurrency string, log *logger.Logger) *Service {
	return &Service{
		repo:            repo,
		wallets:         wallets,
		tx:              tx,
		defaultCurrency: defaultCurrency,
		logger:          log,
	}
}

// GrantBonus credits the bonus balance and opens the wagering task in
// one transaction. Replays of the same reference return the original
// task.
func (s *Service) GrantBonus(ctx context.Context, req GrantRequest) (*Task, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByReference(ctx, req.ReferenceID)
	if err == nil {
		s.logger.Infof("bonus grant replayed reference=%s task=%s", req.ReferenceID, existing.TaskID)
		return existing, nil
	}
	if !errors.Is(err, ErrTaskNotFound) {
		return nil, err
	}

	if _, err := s.wallets.Create(ctx, req.UserID, req.OperatorID, s.defaultCurrency); err != nil {
		return nil, err
	}

	task := &Task{
		TaskID:           uuid.New().String(),
		UserID:           req.UserID,
		OperatorID:       req.OperatorID,
		Source:           req.Source,
		AwardedAmount:    req.Amount,
		WageringRequired: req.Amount.Mul(req.WageringMultiplier),
		Wagered:          decimal.Zero,
		ReferenceID:      req.ReferenceID,
	}

	err = s.tx.RunSerializable(ctx, func(tx *gorm.DB) error {
		if _, _, err := s.wallets.Credit(ctx, tx, req.UserID, req.OperatorID, req.Amount, wallet.BalanceBonus, wallet.SubjectBonusGrant, req.ReferenceID); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grant bonus: %w", err)
	}

	s.logger.Infof("bonus granted task=%s user=%s amount=%s wagering_required=%s source=%s",
		task.TaskID, req.UserID, req.Amount, task.WageringRequired, req.Source)

	return task, nil
}

// AdvanceWagering routes a settled bonus wager into the newest active
// task. It runs inside the settlement transaction; tx is the bet's
// transaction handle.
//
// postBonusBalance is the bonus balance after the bet's debit and
// credit. When the requirement is crossed the untouched remainder of
// the award converts to real money and the task completes. When the
// balance can no longer cover the game's minimum bet the task is
// deleted with no conversion.
func (s *Service) AdvanceWagering(ctx context.Context, tx *gorm.DB, userID, operatorID string, wager, postBonusBalance, gameMinBet decimal.Decimal) (*ProgressDelta, error) {
	task, err := s.repo.LatestActiveForUpdate(ctx, tx, userID, operatorID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}

	wageredBefore := task.Wagered
	newWagered := wageredBefore.Add(wager)
	if newWagered.GreaterThan(task.WageringRequired) {
		newWagered = task.WageringRequired
	}

	if err := s.repo.UpdateWagered(ctx, tx, task.TaskID, newWagered); err != nil {
		return nil, err
	}

	delta := &ProgressDelta{
		TaskID:          task.TaskID,
		WageredBefore:   wageredBefore,
		Wagered:         newWagered,
		Required:        task.WageringRequired,
		ConvertedAmount: decimal.Zero,
	}

	if newWagered.GreaterThanOrEqual(task.WageringRequired) {
		// Whatever part of the award was not burned through wagering
		// converts to withdrawable funds.
		remaining := task.AwardedAmount.Sub(wageredBefore)
		if remaining.IsPositive() {
			if _, _, err := s.wallets.Credit(ctx, tx, userID, operatorID, remaining, wallet.BalanceReal, wallet.SubjectConversion, task.TaskID); err != nil {
				return nil, err
			}
			delta.ConvertedAmount = remaining
		}
		if err := s.repo.MarkCompleted(ctx, tx, task.TaskID); err != nil {
			return nil, err
		}
		delta.Completed = true

		s.logger.Infof("bonus wagering completed task=%s user=%s converted=%s",
			task.TaskID, userID, delta.ConvertedAmount)
		return delta, nil
	}

	if postBonusBalance.LessThan(gameMinBet) {
		if err := s.repo.Delete(ctx, tx, task.TaskID); err != nil {
			return nil, err
		}
		delta.Deleted = true

		s.logger.Infof("bonus task deleted, balance below min bet task=%s user=%s balance=%s min_bet=%s",
			task.TaskID, userID, postBonusBalance, gameMinBet)
	}

	return delta, nil
}

// Progress lists the user's active tasks, newest first.
func (s *Service) Progress(ctx context.Context, userID, operatorID string) ([]TaskProgress, error) {
	tasks, err := s.repo.ActiveTasks(ctx, userID, operatorID)
	if err != nil {
		return nil, err
	}

	out := make([]TaskProgress, 0, len(tasks))
	for _, task := range tasks {
		percent := float64(0)
		if !task.WageringRequired.IsZero() {
			// Display value only, balances stay decimal end to end.
			percent = task.Wagered.Div(task.WageringRequired).
				Mul(decimal.NewFromInt(100)).
				InexactFloat64()
		}
		out = append(out, TaskProgress{
			TaskID:             task.TaskID,
			Source:             task.Source,
			AwardedAmount:      task.AwardedAmount,
			WageringRequired:   task.WageringRequired,
			Wagered:            task.Wagered,
			PercentageComplete: percent,
			IsCompleted:        task.IsCompleted,
			CreatedAt:          task.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) GetTask(ctx context.Context, taskID string) (*Task, error) {
	return s.repo.Get(ctx, taskID)
}
