package vip

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAccountNotFound = errors.New("vip account not found")

type Repository interface {
	EnsureAccount(ctx context.Context, tx *gorm.DB, userID string) error
	AddExperience(ctx context.Context, tx *gorm.DB, userID string, points decimal.Decimal) (*Account, error)
	GetAccount(ctx context.Context, userID string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	Levels(ctx context.Context) ([]Level, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) EnsureAccount(ctx context.Context, tx *gorm.DB, userID string) error {
	acct := Account{UserID: userID, Experience: decimal.Zero}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&acct).Error
}

// AddExperience bumps the counter with a relative update so parallel
// settlements for the same user never drop points.
func (r *RepositoryImpl) AddExperience(ctx context.Context, tx *gorm.DB, userID string, points decimal.Decimal) (*Account, error) {
	var acct Account
	result := tx.WithContext(ctx).Model(&acct).
		Clauses(clause.Returning{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"experience": gorm.Expr("experience + ?", points),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}
	return &acct, nil
}

func (r *RepositoryImpl) GetAccount(ctx context.Context, userID string) (*Account, error) {
	var acct Account
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

func (r *RepositoryImpl) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := r.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *RepositoryImpl) Levels(ctx context.Context) ([]Level, error) {
	var levels []Level
	err := r.db.WithContext(ctx).Order("level ASC").Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}
