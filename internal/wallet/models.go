package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKind selects which of the two wallet balances an operation
// touches. Real money and bonus money never mix in a single entry.
type BalanceKind string

const (
	BalanceReal  BalanceKind = "real"
	BalanceBonus BalanceKind = "bonus"
)

const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Ledger subjects. Every balance mutation is tagged with the business
// action that caused it.
const (
	SubjectDeposit    = "deposit"
	SubjectWithdrawal = "withdrawal"
	SubjectBet        = "bet"
	SubjectWin        = "win"
	SubjectBonusGrant = "bonus_grant"
	SubjectConversion = "bonus_conversion"
	SubjectCashback   = "cashback"
	SubjectJackpot    = "jackpot"
)

type Wallet struct {
	WalletID     string          `gorm:"column:wallet_id;primaryKey;type:uuid" json:"wallet_id"`
	UserID       string          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_wallets_user_operator" json:"user_id"`
	OperatorID   string          `gorm:"column:operator_id;type:varchar(64);not null;uniqueIndex:idx_wallets_user_operator" json:"operator_id"`
	Currency     string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	RealBalance  decimal.Decimal `gorm:"column:real_balance;type:numeric(20,2);not null;default:0" json:"real_balance"`
	BonusBalance decimal.Decimal `gorm:"column:bonus_balance;type:numeric(20,2);not null;default:0" json:"bonus_balance"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (w *Wallet) BalanceOf(kind BalanceKind) decimal.Decimal {
	if kind == BalanceBonus {
		return w.BonusBalance
	}
	return w.RealBalance
}

// LedgerEntry is the immutable audit trail of a single balance
// mutation. Entries are only ever inserted, never updated.
type LedgerEntry struct {
	EntryID       string          `gorm:"column:entry_id;primaryKey;type:uuid" json:"entry_id"`
	WalletID      string          `gorm:"column:wallet_id;type:uuid;not null" json:"wallet_id"`
	UserID        string          `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	OperatorID    string          `gorm:"column:operator_id;type:varchar(64);not null;index" json:"operator_id"`
	Direction     string          `gorm:"column:direction;type:varchar(10);not null" json:"direction"` // "debit", "credit"
	Kind          BalanceKind     `gorm:"column:balance_kind;type:varchar(10);not null" json:"kind"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:numeric(20,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:numeric(20,2);not null" json:"balance_after"`
	Subject       string          `gorm:"column:subject;type:varchar(30);not null;uniqueIndex:idx_ledger_entries_ref_subject" json:"subject"`
	ReferenceID   string          `gorm:"column:reference_id;type:varchar(255);not null;uniqueIndex:idx_ledger_entries_ref_subject" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

type CreateWalletRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	OperatorID string `json:"operator_id" validate:"required"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
}

// FundsRequest moves real money only. Bonus balances change through
// grants and wagering conversion, never through deposit or withdrawal.
type FundsRequest struct {
	UserID      string          `json:"user_id" validate:"required"`
	OperatorID  string          `json:"operator_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	ReferenceID string          `json:"reference_id" validate:"required"`
}

type OperationResult struct {
	EntryID      string          `json:"entry_id"`
	UserID       string          `json:"user_id"`
	OperatorID   string          `json:"operator_id"`
	Kind         BalanceKind     `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	RealBalance  decimal.Decimal `json:"real_balance"`
	BonusBalance decimal.Decimal `json:"bonus_balance"`
	Subject      string          `json:"subject"`
	ReferenceID  string          `json:"reference_id"`
}
