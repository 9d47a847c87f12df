package settlement

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/notify"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeTxRunner struct{}

func (fakeTxRunner) RunSerializable(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeGames struct {
	games map[string]*game.Game
}

func (f *fakeGames) add(g *game.Game) {
	if f.games == nil {
		f.games = map[string]*game.Game{}
	}
	f.games[g.GameID] = g
}

func (f *fakeGames) GetGame(ctx context.Context, gameID string) (*game.Game, error) {
	g, ok := f.games[gameID]
	if !ok || !g.Enabled {
		return nil, game.ErrGameNotFound
	}
	return g, nil
}

type ledgerEntry struct {
	direction string
	kind      wallet.BalanceKind
	amount    decimal.Decimal
	subject   string
	ref       string
}

type fakeWallets struct {
	mu      sync.Mutex
	wallets map[string]*wallet.Wallet
	entries []ledgerEntry
	locks   int
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{wallets: map[string]*wallet.Wallet{}}
}

func walletKey(userID, operatorID string) string {
	return userID + "|" + operatorID
}

func (f *fakeWallets) add(userID, operatorID, real, bonusBal string) {
	f.wallets[walletKey(userID, operatorID)] = &wallet.Wallet{
		WalletID:     "w-" + userID,
		UserID:       userID,
		OperatorID:   operatorID,
		Currency:     "USD",
		RealBalance:  d(real),
		BonusBalance: d(bonusBal),
	}
}

func (f *fakeWallets) LockForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*wallet.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletKey(userID, operatorID)]
	if !ok {
		return nil, wallet.ErrWalletNotFound
	}
	f.locks++
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) Debit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error) {
	return f.apply(userID, operatorID, amount.Neg(), kind, wallet.DirectionDebit, subject, referenceID)
}

func (f *fakeWallets) Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error) {
	return f.apply(userID, operatorID, amount, kind, wallet.DirectionCredit, subject, referenceID)
}

func (f *fakeWallets) apply(userID, operatorID string, delta decimal.Decimal, kind wallet.BalanceKind, direction, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletKey(userID, operatorID)]
	if !ok {
		return nil, nil, wallet.ErrWalletNotFound
	}
	next := w.BalanceOf(kind).Add(delta)
	if next.IsNegative() {
		return nil, nil, wallet.ErrInsufficientBalance
	}
	if kind == wallet.BalanceBonus {
		w.BonusBalance = next
	} else {
		w.RealBalance = next
	}
	f.entries = append(f.entries, ledgerEntry{
		direction: direction,
		kind:      kind,
		amount:    delta.Abs(),
		subject:   subject,
		ref:       referenceID,
	})
	cp := *w
	return &cp, nil, nil
}

func (f *fakeWallets) entriesOf(kind wallet.BalanceKind) []ledgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ledgerEntry
	for _, e := range f.entries {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeWallets) balance(userID, operatorID string) *wallet.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.wallets[walletKey(userID, operatorID)]
	return &cp
}

type awardCall struct {
	group, level, userID, betID string
	amount                      decimal.Decimal
}

type fakeJackpots struct {
	mu     sync.Mutex
	pools  []*jackpot.Pool
	awards []awardCall
}

func (f *fakeJackpots) addPool(group, level, seed, current, rate string) {
	f.pools = append(f.pools, &jackpot.Pool{
		PoolID:           "p-" + group + "-" + level,
		GroupName:        group,
		Level:            level,
		SeedValue:        d(seed),
		CurrentValue:     d(current),
		ContributionRate: d(rate),
		IsActive:         true,
	})
}

func (f *fakeJackpots) ActivePools(ctx context.Context, tx *gorm.DB, group string) ([]jackpot.Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []jackpot.Pool
	for _, p := range f.pools {
		if p.GroupName == group && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeJackpots) Contribute(ctx context.Context, tx *gorm.DB, group, level string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pools {
		if p.GroupName == group && p.Level == level && p.IsActive {
			p.CurrentValue = p.CurrentValue.Add(amount)
			return p.CurrentValue, nil
		}
	}
	return decimal.Zero, jackpot.ErrPoolNotFound
}

func (f *fakeJackpots) AwardAndReset(ctx context.Context, tx *gorm.DB, group, level, userID, operatorID, betID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pools {
		if p.GroupName == group && p.Level == level && p.IsActive {
			amount := p.CurrentValue
			p.CurrentValue = p.SeedValue
			f.awards = append(f.awards, awardCall{group: group, level: level, userID: userID, betID: betID, amount: amount})
			return amount, nil
		}
	}
	return decimal.Zero, jackpot.ErrPoolNotFound
}

func (f *fakeJackpots) pool(group, level string) *jackpot.Pool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pools {
		if p.GroupName == group && p.Level == level {
			cp := *p
			return &cp
		}
	}
	return nil
}

type wageringCall struct {
	userID, operatorID        string
	wager, postBonus, gameMin decimal.Decimal
}

type fakeWagering struct {
	mu    sync.Mutex
	calls []wageringCall
	delta *bonus.ProgressDelta
}

func (f *fakeWagering) AdvanceWagering(ctx context.Context, tx *gorm.DB, userID, operatorID string, wager, postBonusBalance, gameMinBet decimal.Decimal) (*bonus.ProgressDelta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, wageringCall{
		userID: userID, operatorID: operatorID,
		wager: wager, postBonus: postBonusBalance, gameMin: gameMinBet,
	})
	return f.delta, nil
}

type fakeLoyalty struct {
	mu         sync.Mutex
	xp         map[string]decimal.Decimal
	thresholds []decimal.Decimal // thresholds[i] is the minimum XP of level i+1
	rates      map[int]decimal.Decimal
}

func newFakeLoyalty() *fakeLoyalty {
	return &fakeLoyalty{xp: map[string]decimal.Decimal{}, rates: map[int]decimal.Decimal{}}
}

func (f *fakeLoyalty) levelFor(xp decimal.Decimal) int {
	level := 0
	for i, min := range f.thresholds {
		if xp.GreaterThanOrEqual(min) {
			level = i + 1
		}
	}
	return level
}

func (f *fakeLoyalty) AwardXP(ctx context.Context, tx *gorm.DB, userID string, points decimal.Decimal) (*vip.XPResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := f.xp[userID]
	after := before.Add(points)
	f.xp[userID] = after
	prev, now := f.levelFor(before), f.levelFor(after)
	return &vip.XPResult{
		PointsAdded: points,
		Experience:  after,
		PrevLevel:   prev,
		NewLevel:    now,
		LeveledUp:   now > prev,
	}, nil
}

func (f *fakeLoyalty) CashbackRate(level int) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rate, ok := f.rates[level]; ok {
		return rate
	}
	return decimal.Zero
}

type cashbackCall struct {
	userID, operatorID, ref string
	amount                  decimal.Decimal
}

type fakeCashback struct {
	mu      sync.Mutex
	wallets *fakeWallets
	calls   []cashbackCall
}

func (f *fakeCashback) ApplyCashback(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, referenceID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, cashbackCall{userID: userID, operatorID: operatorID, ref: referenceID, amount: amount})
	f.mu.Unlock()
	if !amount.IsPositive() {
		return nil
	}
	_, _, err := f.wallets.Credit(ctx, tx, userID, operatorID, amount, wallet.BalanceReal, wallet.SubjectCashback, referenceID)
	return err
}

type fakeOracle struct {
	mu       sync.Mutex
	outcomes []Outcome
	calls    int
}

func (f *fakeOracle) GenerateOutcome(g *game.Game, wager decimal.Decimal) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.outcomes) == 0 {
		return Outcome{WinAmount: decimal.Zero, Multiplier: decimal.Zero, Label: OutcomeLoss}
	}
	o := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return o
}

type queuedReward struct {
	userID, operatorID, ref string
	level                   int
}

type fakeNotifier struct {
	mu      sync.Mutex
	user    []notify.Event
	admin   []notify.Event
	rewards []queuedReward
}

func (f *fakeNotifier) NotifyUser(userID string, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = append(f.user, event)
}

func (f *fakeNotifier) NotifyOperatorAdmins(operatorID string, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, event)
}

func (f *fakeNotifier) QueueLevelUpReward(userID, operatorID string, level int, referenceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewards = append(f.rewards, queuedReward{userID: userID, operatorID: operatorID, level: level, ref: referenceID})
}

func (f *fakeNotifier) userEvents(kind string) []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Event
	for _, ev := range f.user {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type fakeBets struct {
	mu   sync.Mutex
	recs []BetRecord
}

func (f *fakeBets) Create(ctx context.Context, tx *gorm.DB, rec *BetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeBets) Get(ctx context.Context, betID string) (*BetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.recs {
		if f.recs[i].BetID == betID {
			cp := f.recs[i]
			return &cp, nil
		}
	}
	return nil, ErrBetNotFound
}

func (f *fakeBets) ListByUser(ctx context.Context, userID, operatorID string, page, limit int) ([]BetRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []BetRecord
	for _, r := range f.recs {
		if r.UserID == userID && r.OperatorID == operatorID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type fixture struct {
	games    *fakeGames
	wallets  *fakeWallets
	jackpots *fakeJackpots
	wagering *fakeWagering
	loyalty  *fakeLoyalty
	cashback *fakeCashback
	oracle   *fakeOracle
	notifier *fakeNotifier
	bets     *fakeBets
	svc      *Service
}

func newFixture() *fixture {
	fx := &fixture{
		games:    &fakeGames{},
		wallets:  newFakeWallets(),
		jackpots: &fakeJackpots{},
		wagering: &fakeWagering{},
		loyalty:  newFakeLoyalty(),
		oracle:   &fakeOracle{},
		notifier: &fakeNotifier{},
		bets:     &fakeBets{},
	}
	fx.cashback = &fakeCashback{wallets: fx.wallets}
	fx.svc = NewService(
		fx.bets, fx.games, fx.wallets, fx.jackpots, fx.wagering,
		fx.loyalty, fx.cashback, fx.oracle, fx.notifier,
		fakeTxRunner{}, logger.NewNop(),
	)
	return fx
}

func testGame() *game.Game {
	return &game.Game{
		GameID:        "slots-1",
		Name:          "Test Slots",
		Provider:      "acme",
		RTP:           d("1"),
		MinBet:        d("1"),
		MaxBet:        d("100"),
		AllowsBonus:   true,
		VipMultiplier: d("1"),
		Enabled:       true,
	}
}

func betRequest(wager string) PlaceBetRequest {
	return PlaceBetRequest{
		UserID:     "user-1",
		OperatorID: "op-1",
		GameID:     "slots-1",
		Wager:      d(wager),
	}
}

func TestPlaceBetRealBalanceWin(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "50")
	fx.oracle.outcomes = []Outcome{{WinAmount: d("5"), Multiplier: d("0.5"), Label: OutcomeSmallWin}}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.Equal(t, wallet.BalanceReal, res.BetType)
	assert.True(t, res.WinAmount.Equal(d("5")))
	assert.True(t, res.RealBalance.Equal(d("95")))
	assert.True(t, res.BonusBalance.Equal(d("50")))

	require.Len(t, fx.bets.recs, 1)
	rec := fx.bets.recs[0]
	assert.Equal(t, res.BetID, rec.BetID)
	assert.True(t, rec.RealBefore.Equal(d("100")))
	assert.True(t, rec.RealAfter.Equal(d("95")))
	assert.True(t, rec.BonusBefore.Equal(d("50")))
	assert.True(t, rec.BonusAfter.Equal(d("50")))
	assert.True(t, rec.GGR.Equal(d("5")))

	// post - pre on the used balance equals win - wager
	diff := rec.RealAfter.Add(rec.BonusAfter).Sub(rec.RealBefore).Sub(rec.BonusBefore)
	assert.True(t, diff.Equal(rec.WinAmount.Sub(rec.Wager)))

	realEntries := fx.wallets.entriesOf(wallet.BalanceReal)
	require.Len(t, realEntries, 2)
	assert.Equal(t, wallet.SubjectBet, realEntries[0].subject)
	assert.Equal(t, wallet.DirectionDebit, realEntries[0].direction)
	assert.True(t, realEntries[0].amount.Equal(d("10")))
	assert.Equal(t, wallet.SubjectWin, realEntries[1].subject)
	assert.True(t, realEntries[1].amount.Equal(d("5")))
	assert.Empty(t, fx.wallets.entriesOf(wallet.BalanceBonus))

	require.Len(t, fx.notifier.userEvents(notify.EventBetSettled), 1)
	require.Len(t, fx.notifier.admin, 1)
}

func TestPlaceBetLossDebitsOnly(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "0")

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLoss, res.OutcomeLabel)
	assert.True(t, res.RealBalance.Equal(d("90")))
	require.Len(t, fx.wallets.entriesOf(wallet.BalanceReal), 1)
	assert.True(t, fx.bets.recs[0].GGR.Equal(d("10")))
}

func TestPlaceBetValidationRejectsBeforeAnySideEffect(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "0")

	req := betRequest("10")
	req.Wager = decimal.Zero
	_, err := fx.svc.PlaceBet(context.Background(), req)

	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fx.wallets.locks)
	assert.Empty(t, fx.wallets.entries)
	assert.Empty(t, fx.bets.recs)
}

func TestPlaceBetGameNotFound(t *testing.T) {
	fx := newFixture()
	fx.wallets.add("user-1", "op-1", "100", "0")

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	disabled := testGame()
	disabled.GameID = "slots-off"
	disabled.Enabled = false
	fx.games.add(disabled)

	req := betRequest("10")
	req.GameID = "slots-off"
	_, err = fx.svc.PlaceBet(context.Background(), req)
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestPlaceBetWagerOutOfBoundsHasZeroSideEffects(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "50")
	fx.jackpots.addPool("main", "grand", "100", "1000", "0.01")

	for _, wager := range []string{"0.50", "500"} {
		_, err := fx.svc.PlaceBet(context.Background(), betRequest(wager))
		assert.ErrorIs(t, err, ErrWagerOutOfBounds)
	}

	assert.Zero(t, fx.wallets.locks)
	assert.Zero(t, fx.oracle.calls)
	assert.Empty(t, fx.wallets.entries)
	assert.Empty(t, fx.bets.recs)
	assert.True(t, fx.jackpots.pool("main", "grand").CurrentValue.Equal(d("1000")))

	w := fx.wallets.balance("user-1", "op-1")
	assert.True(t, w.RealBalance.Equal(d("100")))
	assert.True(t, w.BonusBalance.Equal(d("50")))
}

func TestPlaceBetWalletNotFound(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "5", "3")

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Zero(t, fx.oracle.calls)
	assert.Empty(t, fx.wallets.entries)
	assert.Empty(t, fx.bets.recs)
}

func TestPlaceBetBonusBalanceUsedWhenRealShort(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "5", "50")
	fx.wagering.delta = &bonus.ProgressDelta{
		TaskID:   "task-1",
		Wagered:  d("30"),
		Required: d("100"),
	}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.Equal(t, wallet.BalanceBonus, res.BetType)
	assert.True(t, res.RealBalance.Equal(d("5")))
	assert.True(t, res.BonusBalance.Equal(d("40")))
	assert.Empty(t, fx.wallets.entriesOf(wallet.BalanceReal))

	require.Len(t, fx.wagering.calls, 1)
	call := fx.wagering.calls[0]
	assert.True(t, call.wager.Equal(d("10")))
	assert.True(t, call.postBonus.Equal(d("40")))
	assert.True(t, call.gameMin.Equal(d("1")))

	rec := fx.bets.recs[0]
	require.NotNil(t, rec.WageringTaskID)
	assert.Equal(t, "task-1", *rec.WageringTaskID)
	require.True(t, rec.WageringProgress.Valid)
	assert.True(t, rec.WageringProgress.Decimal.Equal(d("30")))
}

func TestPlaceBetBonusNotAllowedByGame(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.AllowsBonus = false
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "5", "50")

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, fx.wagering.calls)
}

func TestPlaceBetRealWagerNeverTouchesWagering(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "50")

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)
	assert.Empty(t, fx.wagering.calls)
}

func TestPlaceBetJackpotAwardAddsPoolAndResets(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.JackpotGroup = "main"
	g.JackpotLevel = "grand"
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.jackpots.addPool("main", "grand", "100", "1000", "0")
	fx.oracle.outcomes = []Outcome{{
		WinAmount:    d("50"),
		Multiplier:   d("5"),
		IsJackpotWin: true,
		Label:        OutcomeWin,
	}}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.WinAmount.Equal(d("1050")))
	assert.True(t, res.JackpotWin.Equal(d("1000")))
	assert.Equal(t, OutcomeJackpot, res.OutcomeLabel)
	assert.True(t, res.RealBalance.Equal(d("1140")))

	pool := fx.jackpots.pool("main", "grand")
	assert.True(t, pool.CurrentValue.Equal(pool.SeedValue))

	require.Len(t, fx.jackpots.awards, 1)
	assert.Equal(t, res.BetID, fx.jackpots.awards[0].betID)
	assert.True(t, fx.jackpots.awards[0].amount.Equal(d("1000")))

	var jackpotCredits []ledgerEntry
	for _, e := range fx.wallets.entriesOf(wallet.BalanceReal) {
		if e.subject == wallet.SubjectJackpot {
			jackpotCredits = append(jackpotCredits, e)
		}
	}
	require.Len(t, jackpotCredits, 1)
	assert.True(t, jackpotCredits[0].amount.Equal(d("1000")))

	require.Len(t, fx.notifier.userEvents(notify.EventJackpotWon), 1)
}

func TestPlaceBetJackpotFlagIgnoredWithoutGroup(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.oracle.outcomes = []Outcome{{
		WinAmount:    d("50"),
		Multiplier:   d("5"),
		IsJackpotWin: true,
		Label:        OutcomeWin,
	}}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.JackpotWin.IsZero())
	assert.Equal(t, OutcomeWin, res.OutcomeLabel)
	assert.True(t, res.WinAmount.Equal(d("50")))
	assert.Empty(t, fx.jackpots.awards)
}

func TestPlaceBetMissingPoolAbortsWholeBet(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.JackpotGroup = "main"
	g.JackpotLevel = "grand"
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.oracle.outcomes = []Outcome{{WinAmount: d("50"), Multiplier: d("5"), IsJackpotWin: true, Label: OutcomeWin}}

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	assert.ErrorIs(t, err, jackpot.ErrPoolNotFound)
	assert.Empty(t, fx.bets.recs)
}

func TestPlaceBetContributesToEveryActivePool(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.JackpotGroup = "main"
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.jackpots.addPool("main", "mini", "10", "50", "0.01")
	fx.jackpots.addPool("main", "grand", "100", "1000", "0.02")
	fx.jackpots.addPool("other", "mini", "10", "70", "0.05")

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.JackpotContribution.Equal(d("0.30")))
	assert.True(t, fx.jackpots.pool("main", "mini").CurrentValue.Equal(d("50.10")))
	assert.True(t, fx.jackpots.pool("main", "grand").CurrentValue.Equal(d("1000.20")))
	assert.True(t, fx.jackpots.pool("other", "mini").CurrentValue.Equal(d("70")))
	assert.True(t, fx.bets.recs[0].JackpotContribution.Equal(d("0.30")))
}

func TestPlaceBetAwardsXPAndQueuesLevelUpReward(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.VipMultiplier = d("10")
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.loyalty.thresholds = []decimal.Decimal{d("100")}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	require.NotNil(t, res.VIP)
	assert.True(t, res.VIP.PointsAdded.Equal(d("100")))
	assert.True(t, res.VIP.LeveledUp)
	assert.Equal(t, 1, res.VIP.NewLevel)

	require.Len(t, fx.notifier.rewards, 1)
	reward := fx.notifier.rewards[0]
	assert.Equal(t, "user-1", reward.userID)
	assert.Equal(t, 1, reward.level)
	assert.Equal(t, res.BetID, reward.ref)
	require.Len(t, fx.notifier.userEvents(notify.EventLevelUp), 1)

	assert.True(t, fx.bets.recs[0].VipPointsAdded.Equal(d("100")))
}

func TestPlaceBetNoLevelUpNoReward(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.loyalty.thresholds = []decimal.Decimal{d("100")}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	require.NotNil(t, res.VIP)
	assert.False(t, res.VIP.LeveledUp)
	assert.Empty(t, fx.notifier.rewards)
	assert.Empty(t, fx.notifier.userEvents(notify.EventLevelUp))
}

func TestPlaceBetCashbackOnNetLoss(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.VipMultiplier = d("0")
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.loyalty.thresholds = []decimal.Decimal{d("100")}
	fx.loyalty.xp["user-1"] = d("150")
	fx.loyalty.rates[1] = d("0.05")

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.Cashback.Equal(d("0.50")))
	assert.True(t, res.RealBalance.Equal(d("90.50")))

	rec := fx.bets.recs[0]
	assert.True(t, rec.CashbackAmount.Equal(d("0.50")))
	// the audit bracket stops at the win credit; cashback lands after it
	assert.True(t, rec.RealAfter.Equal(d("90")))

	require.Len(t, fx.cashback.calls, 1)
	assert.Equal(t, res.BetID, fx.cashback.calls[0].ref)
}

func TestPlaceBetNoCashbackOnNetWin(t *testing.T) {
	fx := newFixture()
	g := testGame()
	g.VipMultiplier = d("0")
	fx.games.add(g)
	fx.wallets.add("user-1", "op-1", "100", "0")
	fx.loyalty.xp["user-1"] = d("150")
	fx.loyalty.thresholds = []decimal.Decimal{d("100")}
	fx.loyalty.rates[1] = d("0.05")
	fx.oracle.outcomes = []Outcome{{WinAmount: d("20"), Multiplier: d("2"), Label: OutcomeWin}}

	res, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.Cashback.IsZero())
	assert.Empty(t, fx.cashback.calls)
	assert.True(t, res.RealBalance.Equal(d("110")))
}

func TestPlaceBetBonusCompletionPublishesEvent(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "0", "50")
	fx.wagering.delta = &bonus.ProgressDelta{
		TaskID:          "task-1",
		Wagered:         d("100"),
		Required:        d("100"),
		ConvertedAmount: d("70"),
		Completed:       true,
	}

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	events := fx.notifier.userEvents(notify.EventBonusCompleted)
	require.Len(t, events, 1)
	assert.Equal(t, "task-1", events[0].Data["task_id"])
}

func TestPlaceBetBonusDeletionPublishesEvent(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())
	fx.wallets.add("user-1", "op-1", "0", "10.50")
	fx.wagering.delta = &bonus.ProgressDelta{
		TaskID:  "task-1",
		Wagered: d("40"),
		Deleted: true,
	}

	_, err := fx.svc.PlaceBet(context.Background(), betRequest("10"))
	require.NoError(t, err)

	require.Len(t, fx.notifier.userEvents(notify.EventBonusDeleted), 1)
}

func TestPlaceBetConcurrentDistinctWallets(t *testing.T) {
	fx := newFixture()
	fx.games.add(testGame())

	const n = 8
	users := make([]string, n)
	for i := 0; i < n; i++ {
		users[i] = "user-" + string(rune('a'+i))
		fx.wallets.add(users[i], "op-1", "100", "0")
	}
	fx.oracle.outcomes = []Outcome{{WinAmount: d("5"), Multiplier: d("0.5"), Label: OutcomeSmallWin}}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := betRequest("10")
			req.UserID = users[i]
			_, errs[i] = fx.svc.PlaceBet(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		w := fx.wallets.balance(users[i], "op-1")
		assert.True(t, w.RealBalance.Equal(d("95")), "wallet %s ended at %s", users[i], w.RealBalance)
	}
	assert.Len(t, fx.bets.recs, n)
}
