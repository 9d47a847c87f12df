package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/notify"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
	"casino_platform/pkg/validation"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds for wager")
	ErrWagerOutOfBounds  = errors.New("wager outside game limits")
)

// GameCatalog resolves playable games. Disabled games are reported as
// missing.
type GameCatalog interface {
	GetGame(ctx context.Context, gameID string) (*game.Game, error)
}

// WalletLedger is the slice of the wallet repository settlement needs.
// LockForUpdate at the start of the transaction serializes all bets on
// the same wallet.
type WalletLedger interface {
	LockForUpdate(ctx context.Context, tx *gorm.DB, userID, operatorID string) (*wallet.Wallet, error)
	Debit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, kind wallet.BalanceKind, subject, referenceID string) (*wallet.Wallet, *wallet.LedgerEntry, error)
}

type JackpotRegistry interface {
	ActivePools(ctx context.Context, tx *gorm.DB, group string) ([]jackpot.Pool, error)
	Contribute(ctx context.Context, tx *gorm.DB, group, level string, amount decimal.Decimal) (decimal.Decimal, error)
	AwardAndReset(ctx context.Context, tx *gorm.DB, group, level, userID, operatorID, betID string) (decimal.Decimal, error)
}

// WageringTracker advances the active bonus task when a bonus-funded
// wager settles.
type WageringTracker interface {
	AdvanceWagering(ctx context.Context, tx *gorm.DB, userID, operatorID string, wager, postBonusBalance, gameMinBet decimal.Decimal) (*bonus.ProgressDelta, error)
}

type LoyaltyLedger interface {
	AwardXP(ctx context.Context, tx *gorm.DB, userID string, points decimal.Decimal) (*vip.XPResult, error)
	CashbackRate(level int) decimal.Decimal
}

// CashbackApplier credits a cashback reward inside the settlement
// transaction.
type CashbackApplier interface {
	ApplyCashback(ctx context.Context, tx *gorm.DB, userID, operatorID string, amount decimal.Decimal, referenceID string) error
}

type Oracle interface {
	GenerateOutcome(g *game.Game, wager decimal.Decimal) Outcome
}

// Notifier delivers post-commit side effects. All methods are
// best-effort and must never block settlement.
type Notifier interface {
	NotifyUser(userID string, event notify.Event)
	NotifyOperatorAdmins(operatorID string, event notify.Event)
	QueueLevelUpReward(userID, operatorID string, level int, referenceID string)
}

type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service settles wagers. Each PlaceBet runs as one serializable
// transaction covering wallet, jackpot pools, bonus task, loyalty
// ledger and the bet record together.
type Service struct {
	bets     Repository
	games    GameCatalog
	wallets  WalletLedger
	jackpots JackpotRegistry
	wagering WageringTracker
	loyalty  LoyaltyLedger
	cashback CashbackApplier
	oracle   Oracle
	notifier Notifier
	tx       TxRunner
	logger   *logger.Logger
}

func NewService(
	bets Repository,
	games GameCatalog,
	wallets WalletLedger,
	jackpots JackpotRegistry,
	wagering WageringTracker,
	loyalty LoyaltyLedger,
	cashback CashbackApplier,
	oracle Oracle,
	notifier Notifier,
	tx TxRunner,
	logger *logger.Logger,
) *Service {
	return &Service{
		bets:     bets,
		games:    games,
		wallets:  wallets,
		jackpots: jackpots,
		wagering: wagering,
		loyalty:  loyalty,
		cashback: cashback,
		oracle:   oracle,
		notifier: notifier,
		tx:       tx,
		logger:   logger,
	}
}

// PlaceBet validates the request, settles the wager atomically and
// returns the full settlement result. On any error the transaction
// rolls back whole; partial settlement is never observable.
func (s *Service) PlaceBet(ctx context.Context, req PlaceBetRequest) (*SettlementResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	g, err := s.games.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if req.Wager.LessThan(g.MinBet) || req.Wager.GreaterThan(g.MaxBet) {
		return nil, fmt.Errorf("%w: wager %s not in [%s, %s]",
			ErrWagerOutOfBounds, req.Wager, g.MinBet, g.MaxBet)
	}

	betID := uuid.New().String()

	var res *SettlementResult
	err = s.tx.RunSerializable(ctx, func(tx *gorm.DB) error {
		r, err := s.settle(ctx, tx, betID, req, g)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("bet settled: id=%s user=%s game=%s type=%s wager=%s win=%s",
		res.BetID, res.UserID, res.GameID, res.BetType, res.Wager, res.WinAmount)
	s.publishEvents(res)
	return res, nil
}

// settle is the transactional body of PlaceBet. On serialization retry
// the whole body re-runs, including a fresh oracle draw.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, betID string, req PlaceBetRequest, g *game.Game) (*SettlementResult, error) {
	w, err := s.wallets.LockForUpdate(ctx, tx, req.UserID, req.OperatorID)
	if err != nil {
		return nil, err
	}

	betType, err := chooseBetType(w, g, req.Wager)
	if err != nil {
		return nil, err
	}
	preReal, preBonus := w.RealBalance, w.BonusBalance

	contribution := decimal.Zero
	if g.JackpotGroup != "" {
		pools, err := s.jackpots.ActivePools(ctx, tx, g.JackpotGroup)
		if err != nil {
			return nil, err
		}
		for _, p := range pools {
			amount := req.Wager.Mul(p.ContributionRate).Round(2)
			if !amount.IsPositive() {
				continue
			}
			if _, err := s.jackpots.Contribute(ctx, tx, p.GroupName, p.Level, amount); err != nil {
				return nil, err
			}
			contribution = contribution.Add(amount)
		}
	}

	outcome := s.oracle.GenerateOutcome(g, req.Wager)
	winAmount := outcome.WinAmount
	label := outcome.Label

	jackpotWin := decimal.Zero
	if outcome.IsJackpotWin && g.JackpotGroup != "" && g.JackpotLevel != "" {
		jackpotWin, err = s.jackpots.AwardAndReset(ctx, tx, g.JackpotGroup, g.JackpotLevel, req.UserID, req.OperatorID, betID)
		if err != nil {
			return nil, err
		}
		winAmount = winAmount.Add(jackpotWin)
		label = OutcomeJackpot
	}

	post, _, err := s.wallets.Debit(ctx, tx, req.UserID, req.OperatorID, req.Wager, betType, wallet.SubjectBet, betID)
	if err != nil {
		return nil, err
	}
	if outcome.WinAmount.IsPositive() {
		post, _, err = s.wallets.Credit(ctx, tx, req.UserID, req.OperatorID, outcome.WinAmount, betType, wallet.SubjectWin, betID)
		if err != nil {
			return nil, err
		}
	}
	if jackpotWin.IsPositive() {
		post, _, err = s.wallets.Credit(ctx, tx, req.UserID, req.OperatorID, jackpotWin, betType, wallet.SubjectJackpot, betID)
		if err != nil {
			return nil, err
		}
	}
	settledReal, settledBonus := post.RealBalance, post.BonusBalance

	var delta *bonus.ProgressDelta
	if betType == wallet.BalanceBonus {
		delta, err = s.wagering.AdvanceWagering(ctx, tx, req.UserID, req.OperatorID, req.Wager, post.BonusBalance, g.MinBet)
		if err != nil {
			return nil, err
		}
	}

	points := req.Wager.Mul(g.VipMultiplier).Round(2)
	xp, err := s.loyalty.AwardXP(ctx, tx, req.UserID, points)
	if err != nil {
		return nil, err
	}

	cashbackAmount := decimal.Zero
	if winAmount.LessThan(req.Wager) {
		rate := s.loyalty.CashbackRate(xp.NewLevel)
		if rate.IsPositive() {
			cashbackAmount = req.Wager.Sub(winAmount).Mul(rate).Round(2)
			if err := s.cashback.ApplyCashback(ctx, tx, req.UserID, req.OperatorID, cashbackAmount, betID); err != nil {
				return nil, err
			}
		}
	}

	final, err := s.wallets.LockForUpdate(ctx, tx, req.UserID, req.OperatorID)
	if err != nil {
		return nil, err
	}

	rec := &BetRecord{
		BetID:               betID,
		UserID:              req.UserID,
		OperatorID:          req.OperatorID,
		GameID:              g.GameID,
		BetType:             betType,
		Wager:               req.Wager,
		WinAmount:           winAmount,
		Multiplier:          outcome.Multiplier,
		OutcomeLabel:        label,
		JackpotWin:          jackpotWin,
		JackpotContribution: contribution,
		VipPointsAdded:      xp.PointsAdded,
		CashbackAmount:      cashbackAmount,
		GGR:                 req.Wager.Sub(winAmount),
		RealBefore:          preReal,
		BonusBefore:         preBonus,
		RealAfter:           settledReal,
		BonusAfter:          settledBonus,
		CreatedAt:           time.Now().UTC(),
	}
	if delta != nil {
		rec.WageringTaskID = &delta.TaskID
		rec.WageringProgress = decimal.NewNullDecimal(delta.Wagered)
	}
	if err := s.bets.Create(ctx, tx, rec); err != nil {
		return nil, err
	}

	res := &SettlementResult{
		BetID:               rec.BetID,
		UserID:              rec.UserID,
		OperatorID:          rec.OperatorID,
		GameID:              rec.GameID,
		BetType:             betType,
		Wager:               rec.Wager,
		WinAmount:           rec.WinAmount,
		Multiplier:          rec.Multiplier,
		OutcomeLabel:        rec.OutcomeLabel,
		JackpotWin:          jackpotWin,
		JackpotContribution: contribution,
		Cashback:            cashbackAmount,
		RealBalance:         final.RealBalance,
		BonusBalance:        final.BonusBalance,
		Wagering:            delta,
		CreatedAt:           rec.CreatedAt,
	}
	if xp.PointsAdded.IsPositive() || xp.LeveledUp {
		res.VIP = xp
	}
	return res, nil
}

// chooseBetType picks the balance a wager settles against: real when it
// covers the wager, otherwise bonus when the game permits bonus play
// and the bonus balance covers it.
func chooseBetType(w *wallet.Wallet, g *game.Game, wager decimal.Decimal) (wallet.BalanceKind, error) {
	if w.RealBalance.GreaterThanOrEqual(wager) {
		return wallet.BalanceReal, nil
	}
	if g.AllowsBonus && w.BonusBalance.GreaterThanOrEqual(wager) {
		return wallet.BalanceBonus, nil
	}
	return "", ErrInsufficientFunds
}

// publishEvents runs after commit. Failures inside the notifier are
// logged and swallowed there; nothing here can undo the bet.
func (s *Service) publishEvents(res *SettlementResult) {
	data := map[string]interface{}{
		"bet_id":        res.BetID,
		"game_id":       res.GameID,
		"bet_type":      res.BetType,
		"wager":         res.Wager.String(),
		"win":           res.WinAmount.String(),
		"outcome":       res.OutcomeLabel,
		"real_balance":  res.RealBalance.String(),
		"bonus_balance": res.BonusBalance.String(),
	}
	s.notifier.NotifyUser(res.UserID, notify.NewEvent(notify.EventBetSettled, res.UserID, res.OperatorID, data))

	adminData := map[string]interface{}{
		"bet_id":  res.BetID,
		"user_id": res.UserID,
		"game_id": res.GameID,
		"wager":   res.Wager.String(),
		"win":     res.WinAmount.String(),
		"ggr":     res.Wager.Sub(res.WinAmount).String(),
		"outcome": res.OutcomeLabel,
	}
	s.notifier.NotifyOperatorAdmins(res.OperatorID, notify.NewEvent(notify.EventBetSettled, res.UserID, res.OperatorID, adminData))

	if res.JackpotWin.IsPositive() {
		jackpotData := map[string]interface{}{
			"bet_id":  res.BetID,
			"game_id": res.GameID,
			"amount":  res.JackpotWin.String(),
		}
		ev := notify.NewEvent(notify.EventJackpotWon, res.UserID, res.OperatorID, jackpotData)
		s.notifier.NotifyUser(res.UserID, ev)
		s.notifier.NotifyOperatorAdmins(res.OperatorID, ev)
	}

	if res.VIP != nil && res.VIP.LeveledUp {
		levelData := map[string]interface{}{
			"level":      res.VIP.NewLevel,
			"level_name": res.VIP.LevelName,
			"experience": res.VIP.Experience.String(),
		}
		s.notifier.NotifyUser(res.UserID, notify.NewEvent(notify.EventLevelUp, res.UserID, res.OperatorID, levelData))
		s.notifier.QueueLevelUpReward(res.UserID, res.OperatorID, res.VIP.NewLevel, res.BetID)
	}

	if res.Wagering != nil && res.Wagering.Completed {
		completedData := map[string]interface{}{
			"task_id":   res.Wagering.TaskID,
			"converted": res.Wagering.ConvertedAmount.String(),
		}
		s.notifier.NotifyUser(res.UserID, notify.NewEvent(notify.EventBonusCompleted, res.UserID, res.OperatorID, completedData))
	}
	if res.Wagering != nil && res.Wagering.Deleted {
		deletedData := map[string]interface{}{
			"task_id": res.Wagering.TaskID,
		}
		s.notifier.NotifyUser(res.UserID, notify.NewEvent(notify.EventBonusDeleted, res.UserID, res.OperatorID, deletedData))
	}
}

// GetBet returns one bet record by id.
func (s *Service) GetBet(ctx context.Context, betID string) (*BetRecord, error) {
	return s.bets.Get(ctx, betID)
}

// ListBets returns a user's bet history for one operator, newest first.
func (s *Service) ListBets(ctx context.Context, userID, operatorID string, page, limit int) ([]BetRecord, int64, error) {
	return s.bets.ListByUser(ctx, userID, operatorID, page, limit)
}
