package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Repository owns all access to wallets and their ledger. Mutating
// methods take the enclosing transaction handle so that callers decide
// the transaction boundary; the settlement engine runs a whole bet
// inside one.
type Repository interface {
	Create(ctx context.Context, userID, operatorID, currency string) (*Wallet, error)
	Get(ctx context.Context, userID, operatorID string) (*Wallet, error)
	ListByUser(ctx context.Context, userID string) ([]Wallet, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*Wallet, error)
	Debit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind BalanceKind, subject, referenceID string) (*Wallet, *LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind BalanceKind, subject, referenceID string) (*Wallet, *LedgerEntry, error)
	GetEntryByReference(ctx context.Context, referenceID, subject string) (*LedgerEntry, error)
	ListEntries(ctx context.Context, userID, operatorID string, page, limit int) ([]LedgerEntry, int64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, userID, operatorID, currency string) (*Wallet, error) {
	w := Wallet{
		WalletID:     uuid.New().String(),
		UserID:       userID,
		OperatorID:   operatorID,
		Currency:     currency,
		RealBalance:  decimal.Zero,
		BonusBalance: decimal.Zero,
	}

	// Concurrent creates for the same pair collapse onto the existing
	// row instead of failing on the unique index.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&w).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID, operatorID)
}

func (r *RepositoryImpl) Get(ctx context.Context, userID, operatorID string) (*Wallet, error) {
	var w Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND operator_id = ?", userID, operatorID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID string) ([]Wallet, error) {
	var wallets []Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("operator_id").
		Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// LockForUpdate pins the wallet row for the rest of the transaction.
// Concurrent settlements against the same wallet queue up here, which
// keeps them strictly serialized per wallet.
func (r *RepositoryImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*Wallet, error) {
	var w Wallet
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND operator_id = ?", userID, operatorID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *RepositoryImpl) Debit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind BalanceKind, subject, referenceID string) (*Wallet, *LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	col := balanceColumn(kind)
	var w Wallet

	// Single relative update guarded by the balance predicate. The
	// balance can never go negative regardless of interleaving.
	result := tx.WithContext(ctx).Model(&w).
		Clauses(clause.Returning{}).
		Where("user_id = ? AND operator_id = ? AND "+col+" >= ?", userID, operatorID, amount).
		Updates(map[string]interface{}{
			col:          gorm.Expr(col+" - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.walletExists(ctx, tx, userID, operatorID); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrInsufficientBalance
	}

	after := w.BalanceOf(kind)
	entry, err := r.appendEntry(ctx, tx, &w, DirectionDebit, kind, amount, after.Add(amount), after, subject, referenceID)
	if err != nil {
		return nil, nil, err
	}
	return &w, entry, nil
}

func (r *RepositoryImpl) Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind BalanceKind, subject, referenceID string) (*Wallet, *LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	col := balanceColumn(kind)
	var w Wallet

	result := tx.WithContext(ctx).Model(&w).
		Clauses(clause.Returning{}).
		Where("user_id = ? AND operator_id = ?", userID, operatorID).
		Updates(map[string]interface{}{
			col:          gorm.Expr(col+" + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil, ErrWalletNotFound
	}

	after := w.BalanceOf(kind)
	entry, err := r.appendEntry(ctx, tx, &w, DirectionCredit, kind, amount, after.Sub(amount), after, subject, referenceID)
	if err != nil {
		return nil, nil, err
	}
	return &w, entry, nil
}

func (r *RepositoryImpl) GetEntryByReference(ctx context.Context, referenceID, subject string) (*LedgerEntry, error) {
	var e LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_id = ? AND subject = ?", referenceID, subject).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *RepositoryImpl) ListEntries(ctx context.Context, userID, operatorID string, page, limit int) ([]LedgerEntry, int64, error) {
	var entries []LedgerEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&LedgerEntry{}).
		Where("user_id = ? AND operator_id = ?", userID, operatorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *RepositoryImpl) walletExists(ctx context.Context, tx *gorm.DB, userID, operatorID string) error {
	var count int64
	err := tx.WithContext(ctx).Model(&Wallet{}).
		Where("user_id = ? AND operator_id = ?", userID, operatorID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *RepositoryImpl) appendEntry(ctx context.Context, tx *gorm.DB, w *Wallet, direction string, kind BalanceKind, amount, before, after decimal.Decimal, subject, referenceID string) (*LedgerEntry, error) {
	entry := &LedgerEntry{
		EntryID:       uuid.New().String(),
		WalletID:      w.WalletID,
		UserID:        w.UserID,
		OperatorID:    w.OperatorID,
		Direction:     direction,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Subject:       subject,
		ReferenceID:   referenceID,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func balanceColumn(kind BalanceKind) string {
	if kind == BalanceBonus {
		return "bonus_balance"
	}
	return "real_balance"
}
