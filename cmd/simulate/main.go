package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"casino_platform/internal/bonus"
	"casino_platform/internal/config"
	"casino_platform/internal/database"
	"casino_platform/internal/game"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/notify"
	"casino_platform/internal/rewards"
	"casino_platform/internal/settlement"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

// nopNotifier drops post-commit events so the simulator only needs a
// database, not redis.
type nopNotifier struct{}

func (nopNotifier) NotifyUser(string, notify.Event)               {}
func (nopNotifier) NotifyOperatorAdmins(string, notify.Event)      {}
func (nopNotifier) QueueLevelUpReward(string, string, int, string) {}

type tally struct {
	mu       sync.Mutex
	bets     int
	wagered  decimal.Decimal
	won      decimal.Decimal
	jackpots int
	jackpot  decimal.Decimal
	cashback decimal.Decimal
	levelUps int
	topUps   int
	failures map[string]int
}

func (t *tally) record(res *settlement.SettlementResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bets++
	t.wagered = t.wagered.Add(res.Wager)
	t.won = t.won.Add(res.WinAmount)
	t.cashback = t.cashback.Add(res.Cashback)
	if res.JackpotWin.IsPositive() {
		t.jackpots++
		t.jackpot = t.jackpot.Add(res.JackpotWin)
	}
	if res.VIP != nil && res.VIP.LeveledUp {
		t.levelUps++
	}
}

func (t *tally) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[err.Error()]++
}

func (t *tally) topUp() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topUps++
}

func main() {
	bots := flag.Int("bots", 8, "concurrent bettors")
	rounds := flag.Int("rounds", 50, "bets per bettor")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logg := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg.DBConnStr, logg)
	if err != nil {
		logg.Fatalf("failed to connect to database: %v", err)
	}

	txRunner := database.NewTxRunner(db)
	walletRepo := wallet.NewRepository(db)
	gameRepo := game.NewRepository(db)
	jackpotRepo := jackpot.NewRepository(db)
	bonusRepo := bonus.NewRepository(db)
	vipRepo := vip.NewRepository(db)
	betRepo := settlement.NewRepository(db)

	vipSvc := vip.NewService(vipRepo, logg)
	if err := vipSvc.WarmLevels(context.Background()); err != nil {
		logg.Fatalf("failed to load vip levels: %v", err)
	}
	bonusSvc := bonus.NewService(bonusRepo, walletRepo, txRunner, cfg.DefaultCurrency, logg)
	rewardSvc := rewards.NewService(bonusSvc, vipSvc, walletRepo, cfg.FreeSpinValue, cfg.BonusWageringFactor, logg)
	walletSvc := wallet.NewService(walletRepo, txRunner, cfg.DefaultCurrency, logg)

	engine := settlement.NewService(
		betRepo,
		gameRepo,
		walletRepo,
		jackpotRepo,
		bonusSvc,
		vipSvc,
		rewardSvc,
		settlement.NewRTPOracle(cfg.JackpotOdds),
		nopNotifier{},
		txRunner,
		logg,
	)

	ctx := context.Background()
	games, err := gameRepo.List(ctx)
	if err != nil {
		logg.Fatalf("failed to list games: %v", err)
	}
	if len(games) == 0 {
		logg.Fatal("no games in catalog, run the seed first")
	}

	var wallets []wallet.Wallet
	if err := db.Find(&wallets).Error; err != nil {
		logg.Fatalf("failed to list wallets: %v", err)
	}
	if len(wallets) == 0 {
		logg.Fatal("no wallets found, run the seed first")
	}

	logg.Infof("simulating %d bettors x %d bets over %d wallets and %d games",
		*bots, *rounds, len(wallets), len(games))

	stats := &tally{failures: make(map[string]int)}
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *bots; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + seed))

			for n := 0; n < *rounds; n++ {
				w := wallets[rng.Intn(len(wallets))]
				g := games[rng.Intn(len(games))]

				res, err := engine.PlaceBet(ctx, settlement.PlaceBetRequest{
					UserID:     w.UserID,
					OperatorID: w.OperatorID,
					GameID:     g.GameID,
					Wager:      randomWager(rng, g),
				})
				if err != nil {
					// Broke bettors top up and keep playing, like the
					// real ones do.
					if errors.Is(err, settlement.ErrInsufficientFunds) {
						_, depErr := walletSvc.Deposit(ctx, wallet.FundsRequest{
							UserID:      w.UserID,
							OperatorID:  w.OperatorID,
							Amount:      decimal.NewFromInt(500),
							ReferenceID: common.GenerateRefNo(),
						})
						if depErr == nil {
							stats.topUp()
							continue
						}
					}
					stats.fail(err)
					continue
				}
				stats.record(res)
			}
		}(int64(i))
	}
	wg.Wait()

	elapsed := time.Since(start)
	ggr := stats.wagered.Sub(stats.won)

	fmt.Printf("\nsettled %d bets in %s (%.0f bets/s)\n",
		stats.bets, elapsed.Round(time.Millisecond), float64(stats.bets)/elapsed.Seconds())
	fmt.Printf("  wagered   %s\n", stats.wagered.StringFixed(2))
	fmt.Printf("  won       %s\n", stats.won.StringFixed(2))
	fmt.Printf("  ggr       %s\n", ggr.StringFixed(2))
	fmt.Printf("  cashback  %s\n", stats.cashback.StringFixed(2))
	fmt.Printf("  jackpots  %d hits paying %s\n", stats.jackpots, stats.jackpot.StringFixed(2))
	fmt.Printf("  level ups %d\n", stats.levelUps)
	fmt.Printf("  top ups   %d\n", stats.topUps)
	for reason, count := range stats.failures {
		fmt.Printf("  rejected  %d x %s\n", count, reason)
	}
}

// randomWager picks a wager inside the game's limits, capped so a run
// does not drain the seeded balances too quickly.
func randomWager(rng *rand.Rand, g game.Game) decimal.Decimal {
	upper := g.MaxBet
	ceiling := decimal.NewFromInt(20)
	if upper.GreaterThan(ceiling) {
		upper = ceiling
	}
	if upper.LessThan(g.MinBet) {
		return g.MinBet
	}

	span := upper.Sub(g.MinBet).InexactFloat64()
	wager := g.MinBet.InexactFloat64() + rng.Float64()*span
	return decimal.NewFromFloat(wager).Round(2)
}
