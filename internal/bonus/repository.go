package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTaskNotFound  = errors.New("bonus task not found")
	ErrTaskCompleted = errors.New("bonus task already completed")
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, task *Task) error
	Get(ctx context.Context, taskID string) (*Task, error)
	GetByReference(ctx context.Context, referenceID string) (*Task, error)
	ActiveTasks(ctx context.Context, userID, operatorID string) ([]Task, error)
	LatestActiveForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*Task, error)
	UpdateWagered(ctx context.Context, tx *gorm.DB, taskID string, wagered decimal.Decimal) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, taskID string) error
	Delete(ctx context.Context, tx *gorm.DB, taskID string) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, tx *gorm.DB, task *Task) error {
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create bonus task: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get bonus task: %w", err)
	}
	return &task, nil
}

func (r *RepositoryImpl) GetByReference(ctx context.Context, referenceID string) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get bonus task by reference: %w", err)
	}
	return &task, nil
}

func (r *RepositoryImpl) ActiveTasks(ctx context.Context, userID, operatorID string) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND operator_id = ? AND is_completed = ?", userID, operatorID, false).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active bonus tasks: %w", err)
	}
	return tasks, nil
}

// LatestActiveForUpdate locks the newest active task for the wallet.
// Newest-first is the routing policy for wagering progress when a user
// holds several active tasks.
func (r *RepositoryImpl) LatestActiveForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*Task, error) {
	var task Task
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND operator_id = ? AND is_completed = ?", userID, operatorID, false).
		Order("created_at DESC").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to lock bonus task: %w", err)
	}
	return &task, nil
}

func (r *RepositoryImpl) UpdateWagered(ctx context.Context, tx *gorm.DB, taskID string, wagered decimal.Decimal) error {
	result := tx.WithContext(ctx).
		Model(&Task{}).
		Where("task_id = ?", taskID).
		Updates(map[string]interface{}{
			"wagered":    wagered,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wagering progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MarkCompleted flips the terminal flag. The is_completed predicate
// makes a replay a no-op instead of a double completion.
func (r *RepositoryImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, taskID string) error {
	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&Task{}).
		Where("task_id = ? AND is_completed = ?", taskID, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": &now,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete bonus task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskCompleted
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, tx *gorm.DB, taskID string) error {
	result := tx.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bonus task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
