package jackpot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPoolNotFound = errors.New("jackpot pool not found")

type Repository interface {
	ActivePools(ctx context.Context, tx *gorm.DB, group string) ([]Pool, error)
	GetPool(ctx context.Context, group, level string) (*Pool, error)
	ListPools(ctx context.Context) ([]Pool, error)
	Contribute(ctx context.Context, tx *gorm.DB, group, level string, amount decimal.Decimal) (decimal.Decimal, error)
	AwardAndReset(ctx context.Context, tx *gorm.DB, group, level, userID, operatorID, betID string) (decimal.Decimal, error)
	RecentWins(ctx context.Context, group string, limit int) ([]Win, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ActivePools(ctx context.Context, tx *gorm.DB, group string) ([]Pool, error) {
	var pools []Pool
	err := tx.WithContext(ctx).
		Where("group_name = ? AND is_active = ?", group, true).
		Order("seed_value ASC").
		Find(&pools).Error
	if err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *RepositoryImpl) GetPool(ctx context.Context, group, level string) (*Pool, error) {
	var p Pool
	err := r.db.WithContext(ctx).
		Where("group_name = ? AND level = ? AND is_active = ?", group, level, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) ListPools(ctx context.Context) ([]Pool, error) {
	var pools []Pool
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("group_name, seed_value ASC").
		Find(&pools).Error
	if err != nil {
		return nil, err
	}
	return pools, nil
}

// Contribute grows the pool by a relative update so that concurrent
// bets from different wallets never lose increments. Returns the pool
// value after the contribution.
func (r *RepositoryImpl) Contribute(ctx context.Context, tx *gorm.DB, group, level string, amount decimal.Decimal) (decimal.Decimal, error) {
	var p Pool
	result := tx.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{}).
		Where("group_name = ? AND level = ? AND is_active = ?", group, level, true).
		Updates(map[string]interface{}{
			"current_value": gorm.Expr("current_value + ?", amount),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, ErrPoolNotFound
	}
	return p.CurrentValue, nil
}

// AwardAndReset locks the pool row, pays out its full current value
// and drops it back to the seed. The lock closes the window where a
// concurrent contribution could land between the read and the reset.
func (r *RepositoryImpl) AwardAndReset(ctx context.Context, tx *gorm.DB, group, level, userID, operatorID, betID string) (decimal.Decimal, error) {
	var p Pool
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_name = ? AND level = ? AND is_active = ?", group, level, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrPoolNotFound
		}
		return decimal.Zero, err
	}

	amount := p.CurrentValue

	win := &Win{
		WinID:      uuid.New().String(),
		PoolID:     p.PoolID,
		GroupName:  p.GroupName,
		Level:      p.Level,
		UserID:     userID,
		OperatorID: operatorID,
		BetID:      betID,
		Amount:     amount,
	}
	if err := tx.WithContext(ctx).Create(win).Error; err != nil {
		return decimal.Zero, err
	}

	err = tx.WithContext(ctx).Model(&Pool{}).
		Where("pool_id = ?", p.PoolID).
		Updates(map[string]interface{}{
			"current_value": p.SeedValue,
			"updated_at":    time.Now(),
		}).Error
	if err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

func (r *RepositoryImpl) RecentWins(ctx context.Context, group string, limit int) ([]Win, error) {
	var wins []Win
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if group != "" {
		q = q.Where("group_name = ?", group)
	}
	if err := q.Find(&wins).Error; err != nil {
		return nil, err
	}
	return wins, nil
}
