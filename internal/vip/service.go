package vip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"casino_platform/pkg/logger"
)

// Service resolves experience into levels. The tier table is tiny and
// static, so it is cached in memory after WarmLevels.
type Service struct {
	repo   Repository
	logger *logger.Logger

	mu     sync.RWMutex
	levels []Level // sorted by XPThreshold ascending
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// WarmLevels loads the tier table. Call once at startup and again if
// the table is reseeded.
func (s *Service) WarmLevels(ctx context.Context) error {
	levels, err := s.repo.Levels(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vip levels: %w", err)
	}
	s.mu.Lock()
	s.levels = levels
	s.mu.Unlock()
	s.logger.Infof("vip level table loaded, %d tiers", len(levels))
	return nil
}

// AwardXP credits experience inside the caller's transaction and
// reports whether the account crossed into a new level.
func (s *Service) AwardXP(ctx context.Context, tx *gorm.DB, userID string, points decimal.Decimal) (*XPResult, error) {
	if !points.IsPositive() {
		acct, err := s.currentAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		lvl := s.LevelFor(acct.Experience)
		return &XPResult{
			PointsAdded: decimal.Zero,
			Experience:  acct.Experience,
			PrevLevel:   lvl.Level,
			NewLevel:    lvl.Level,
			LevelName:   lvl.Name,
		}, nil
	}

	if err := s.repo.EnsureAccount(ctx, tx, userID); err != nil {
		return nil, err
	}

	acct, err := s.repo.AddExperience(ctx, tx, userID, points)
	if err != nil {
		return nil, err
	}

	prev := s.LevelFor(acct.Experience.Sub(points))
	cur := s.LevelFor(acct.Experience)

	return &XPResult{
		PointsAdded: points,
		Experience:  acct.Experience,
		PrevLevel:   prev.Level,
		NewLevel:    cur.Level,
		LevelName:   cur.Name,
		LeveledUp:   cur.Level > prev.Level,
	}, nil
}

// LevelFor returns the highest tier whose threshold xp has reached.
// With no tiers loaded everyone is level 0 with no benefits.
func (s *Service) LevelFor(xp decimal.Decimal) Level {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := Level{Level: 0, Name: "none", XPThreshold: decimal.Zero, CashbackRate: decimal.Zero}
	for _, lvl := range s.levels {
		if xp.GreaterThanOrEqual(lvl.XPThreshold) {
			current = lvl
		} else {
			break
		}
	}
	return current
}

// LevelInfo looks a tier up by number.
func (s *Service) LevelInfo(level int) (Level, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, lvl := range s.levels {
		if lvl.Level == level {
			return lvl, true
		}
	}
	return Level{}, false
}

func (s *Service) CashbackRate(level int) decimal.Decimal {
	if lvl, ok := s.LevelInfo(level); ok {
		return lvl.CashbackRate
	}
	return decimal.Zero
}

func (s *Service) LevelTable() []Level {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Level, len(s.levels))
	copy(out, s.levels)
	return out
}

func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Profile assembles the API view. Users without an account row simply
// have zero experience.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	acct, err := s.currentAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	lvl := s.LevelFor(acct.Experience)
	p := &Profile{
		UserID:            userID,
		Experience:        acct.Experience,
		Level:             lvl.Level,
		LevelName:         lvl.Name,
		CashbackRate:      lvl.CashbackRate,
		FreeSpinsPerMonth: lvl.FreeSpinsPerMonth,
	}

	s.mu.RLock()
	for _, next := range s.levels {
		if next.Level > lvl.Level {
			threshold := next.XPThreshold
			p.NextLevelXP = &threshold
			break
		}
	}
	s.mu.RUnlock()

	return p, nil
}

func (s *Service) currentAccount(ctx context.Context, userID string) (*Account, error) {
	acct, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &Account{UserID: userID, Experience: decimal.Zero}, nil
		}
		return nil, err
	}
	return acct, nil
}
