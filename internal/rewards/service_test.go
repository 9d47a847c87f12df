package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"casino_platform/internal/bonus"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
)

type fakeGranter struct {
	byRef map[string]*bonus.Task
	calls []bonus.GrantRequest
}

func (f *fakeGranter) GrantBonus(ctx context.Context, req bonus.GrantRequest) (*bonus.Task, error) {
	if existing, ok := f.byRef[req.ReferenceID]; ok {
		return existing, nil
	}
	task := &bonus.Task{
		TaskID:           uuid.New().String(),
		UserID:           req.UserID,
		OperatorID:       req.OperatorID,
		Source:           req.Source,
		AwardedAmount:    req.Amount,
		WageringRequired: req.Amount.Mul(req.WageringMultiplier),
		ReferenceID:      req.ReferenceID,
	}
	if f.byRef == nil {
		f.byRef = make(map[string]*bonus.Task)
	}
	f.byRef[req.ReferenceID] = task
	f.calls = append(f.calls, req)
	return task, nil
}

type fakeLevels struct {
	levels map[int]vip.Level
}

func (f *fakeLevels) LevelInfo(level int) (vip.Level, bool) {
	lvl, ok := f.levels[level]
	return lvl, ok
}

type fakeLedger struct {
	credits []decimal.Decimal
}

func (f *fakeLedger) Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error) {
	f.credits = append(f.credits, amount)
	return &wallet.Wallet{UserID: userID, OperatorID: operatorID}, &wallet.LedgerEntry{Amount: amount}, nil
}

func newTestService(granter *fakeGranter, levels *fakeLevels, ledger *fakeLedger) *Service {
	return NewService(granter, levels, ledger,
		decimal.RequireFromString("0.20"),
		decimal.NewFromInt(20),
		logger.NewNop())
}

func TestGrantFreeSpinsComputesAmount(t *testing.T) {
	granter := &fakeGranter{}
	svc := newTestService(granter, &fakeLevels{}, &fakeLedger{})

	task, err := svc.GrantFreeSpins(context.Background(), "user-1", "op-1", 25, bonus.SourceFreeSpins, "monthly:2026-08:w1")
	require.NoError(t, err)

	// 25 spins at 0.20 each.
	assert.True(t, task.AwardedAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, task.WageringRequired.Equal(decimal.NewFromInt(100)))
	require.Len(t, granter.calls, 1)
	assert.Equal(t, bonus.SourceFreeSpins, granter.calls[0].Source)
}

func TestGrantFreeSpinsRejectsNonPositiveCount(t *testing.T) {
	svc := newTestService(&fakeGranter{}, &fakeLevels{}, &fakeLedger{})

	_, err := svc.GrantFreeSpins(context.Background(), "user-1", "op-1", 0, bonus.SourceFreeSpins, "ref")
	assert.Error(t, err)
}

func TestApplyLevelUpRewardUsesTierAllowance(t *testing.T) {
	granter := &fakeGranter{}
	levels := &fakeLevels{levels: map[int]vip.Level{
		2: {Level: 2, Name: "silver", FreeSpinsPerMonth: 20},
	}}
	svc := newTestService(granter, levels, &fakeLedger{})

	task, err := svc.ApplyLevelUpReward(context.Background(), "user-1", "op-1", 2, "bet-42")
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, bonus.SourceLevelUpReward, task.Source)
	assert.True(t, task.AwardedAmount.Equal(decimal.NewFromInt(4)))
}

func TestApplyLevelUpRewardIdempotentPerReference(t *testing.T) {
	granter := &fakeGranter{}
	levels := &fakeLevels{levels: map[int]vip.Level{
		1: {Level: 1, Name: "bronze", FreeSpinsPerMonth: 5},
	}}
	svc := newTestService(granter, levels, &fakeLedger{})

	first, err := svc.ApplyLevelUpReward(context.Background(), "user-1", "op-1", 1, "bet-42")
	require.NoError(t, err)
	second, err := svc.ApplyLevelUpReward(context.Background(), "user-1", "op-1", 1, "bet-42")
	require.NoError(t, err)

	assert.Equal(t, first.TaskID, second.TaskID)
	assert.Len(t, granter.calls, 1)
}

func TestApplyLevelUpRewardNoAllowance(t *testing.T) {
	granter := &fakeGranter{}
	levels := &fakeLevels{levels: map[int]vip.Level{
		1: {Level: 1, Name: "bronze", FreeSpinsPerMonth: 0},
	}}
	svc := newTestService(granter, levels, &fakeLedger{})

	task, err := svc.ApplyLevelUpReward(context.Background(), "user-1", "op-1", 1, "bet-42")
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Empty(t, granter.calls)
}

func TestApplyLevelUpRewardUnknownLevel(t *testing.T) {
	svc := newTestService(&fakeGranter{}, &fakeLevels{}, &fakeLedger{})

	_, err := svc.ApplyLevelUpReward(context.Background(), "user-1", "op-1", 9, "bet-42")
	assert.Error(t, err)
}

func TestApplyCashbackSkipsZero(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(&fakeGranter{}, &fakeLevels{}, ledger)

	err := svc.ApplyCashback(context.Background(), nil, "user-1", "op-1", decimal.Zero, "bet-1")
	require.NoError(t, err)
	assert.Empty(t, ledger.credits)
}

func TestApplyCashbackCreditsReal(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(&fakeGranter{}, &fakeLevels{}, ledger)

	err := svc.ApplyCashback(context.Background(), nil, "user-1", "op-1", decimal.RequireFromString("0.25"), "bet-1")
	require.NoError(t, err)
	require.Len(t, ledger.credits, 1)
	assert.True(t, ledger.credits[0].Equal(decimal.RequireFromString("0.25")))
}
