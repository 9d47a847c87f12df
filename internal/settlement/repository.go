package settlement

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrBetNotFound = errors.New("bet not found")

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, rec *BetRecord) error
	Get(ctx context.Context, betID string) (*BetRecord, error)
	ListByUser(ctx context.Context, userID, operatorID string, page, limit int) ([]BetRecord, int64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, tx *gorm.DB, rec *BetRecord) error {
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, betID string) (*BetRecord, error) {
	var rec BetRecord
	err := r.db.WithContext(ctx).
		Where("bet_id = ?", betID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet record: %w", err)
	}
	return &rec, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID, operatorID string, page, limit int) ([]BetRecord, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&BetRecord{}).
		Where("user_id = ? AND operator_id = ?", userID, operatorID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bet records: %w", err)
	}

	var recs []BetRecord
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bet records: %w", err)
	}
	return recs, total, nil
}
