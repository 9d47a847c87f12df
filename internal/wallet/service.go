package wallet

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"casino_platform/pkg/logger"
	"casino_platform/pkg/validation"
)

// TxRunner is satisfied by database.TxRunner. Declared here so the
// service can be exercised in tests without a live database.
type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	repo            Repository
	tx              TxRunner
	defaultCurrency string
	logger          *logger.Logger
}

func NewService(repo Repository, tx TxRunner, defaultCurrency string, log *logger.Logger) *Service {
	return &Service{
		repo:            repo,
		tx:              tx,
		defaultCurrency: defaultCurrency,
		logger:          log,
	}
}

func (s *Service) CreateWallet(ctx context.Context, req CreateWalletRequest) (*Wallet, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	return s.repo.Create(ctx, req.UserID, req.OperatorID, currency)
}

func (s *Service) GetBalances(ctx context.Context, userID, operatorID string) (*Wallet, error) {
	return s.repo.Get(ctx, userID, operatorID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Wallet, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Deposit credits the real balance. Replays of the same reference
// return the original result instead of crediting twice.
func (s *Service) Deposit(ctx context.Context, req FundsRequest) (*OperationResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetEntryByReference(ctx, req.ReferenceID, SubjectDeposit)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.resultFromEntry(ctx, existing)
	}

	// Deposits may arrive before any bet, so the wallet is created on
	// first contact.
	if _, err := s.repo.Get(ctx, req.UserID, req.OperatorID); errors.Is(err, ErrWalletNotFound) {
		if _, err := s.repo.Create(ctx, req.UserID, req.OperatorID, s.defaultCurrency); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	var w *Wallet
	var entry *LedgerEntry
	err = s.tx.RunSerializable(ctx, func(tx *gorm.DB) error {
		var txErr error
		w, entry, txErr = s.repo.Credit(ctx, tx, req.UserID, req.OperatorID, req.Amount, BalanceReal, SubjectDeposit, req.ReferenceID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("deposit failed: %w", err)
	}

	s.logger.Infof("deposit completed user=%s operator=%s amount=%s", req.UserID, req.OperatorID, req.Amount)
	return resultFrom(w, entry), nil
}

// Withdraw debits the real balance. Bonus funds are never
// withdrawable; they leave the bonus balance only through wagering
// conversion.
func (s *Service) Withdraw(ctx context.Context, req FundsRequest) (*OperationResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetEntryByReference(ctx, req.ReferenceID, SubjectWithdrawal)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.resultFromEntry(ctx, existing)
	}

	var w *Wallet
	var entry *LedgerEntry
	err = s.tx.RunSerializable(ctx, func(tx *gorm.DB) error {
		var txErr error
		w, entry, txErr = s.repo.Debit(ctx, tx, req.UserID, req.OperatorID, req.Amount, BalanceReal, SubjectWithdrawal, req.ReferenceID)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrWalletNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("withdrawal failed: %w", err)
	}

	s.logger.Infof("withdrawal completed user=%s operator=%s amount=%s", req.UserID, req.OperatorID, req.Amount)
	return resultFrom(w, entry), nil
}

func (s *Service) Entries(ctx context.Context, userID, operatorID string, page, limit int) ([]LedgerEntry, int64, error) {
	return s.repo.ListEntries(ctx, userID, operatorID, page, limit)
}

func (s *Service) resultFromEntry(ctx context.Context, entry *LedgerEntry) (*OperationResult, error) {
	w, err := s.repo.Get(ctx, entry.UserID, entry.OperatorID)
	if err != nil {
		return nil, err
	}
	return resultFrom(w, entry), nil
}

func resultFrom(w *Wallet, entry *LedgerEntry) *OperationResult {
	return &OperationResult{
		EntryID:      entry.EntryID,
		UserID:       w.UserID,
		OperatorID:   w.OperatorID,
		Kind:         entry.Kind,
		Amount:       entry.Amount,
		RealBalance:  w.RealBalance,
		BonusBalance: w.BonusBalance,
		Subject:      entry.Subject,
		ReferenceID:  entry.ReferenceID,
	}
}
