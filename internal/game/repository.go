package game

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrGameNotFound = errors.New("game not found")

type Repository interface {
	// GetGame returns an enabled game. Disabled games are treated as
	// absent so they cannot be wagered on.
	GetGame(ctx context.Context, gameID string) (*Game, error)
	List(ctx context.Context) ([]Game, error)
	Upsert(ctx context.Context, g *Game) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetGame(ctx context.Context, gameID string) (*Game, error) {
	var g Game
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND enabled = ?", gameID, true).
		First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Game, error) {
	var games []Game
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("game_id").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *RepositoryImpl) Upsert(ctx context.Context, g *Game) error {
	return r.db.WithContext(ctx).Save(g).Error
}
