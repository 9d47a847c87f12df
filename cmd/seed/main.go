package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"casino_platform/internal/bonus"
	"casino_platform/internal/config"
	"casino_platform/internal/database"
	"casino_platform/internal/game"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/reports"
	"casino_platform/internal/settlement"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/pkg/logger"
)

// Seeds the database with the VIP ladder, a small game catalog, one
// jackpot group and funded demo wallets. Safe to run repeatedly.
func main() {
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
	err = db.AutoMigrate(
		&wallet.Wallet{},
		&wallet.LedgerEntry{},
		&game.Game{},
		&jackpot.Pool{},
		&jackpot.Win{},
		&bonus.Task{},
		&vip.Account{},
		&vip.Level{},
		&settlement.BetRecord{},
		&reports.DailyOperatorSummary{},
	)
	if err != nil {
		logg.Fatalf("failed to migrate schema: %v", err)
	}

	ctx := context.Background()
	if err := seedVIPLevels(ctx, db); err != nil {
		logg.Fatalf("failed to seed vip levels: %v", err)
	}
	if err := seedGames(ctx, db); err != nil {
		logg.Fatalf("failed to seed games: %v", err)
	}
	if err := seedJackpotPools(ctx, db); err != nil {
		logg.Fatalf("failed to seed jackpot pools: %v", err)
	}
	if err := seedDemoWallets(ctx, db, cfg, logg); err != nil {
		logg.Fatalf("failed to seed demo wallets: %v", err)
	}

	logg.Info("seed complete")
}

func seedVIPLevels(ctx context.Context, db *gorm.DB) error {
	levels := []vip.Level{
		{Level: 0, Name: "none", XPThreshold: decimal.Zero, CashbackRate: decimal.Zero, FreeSpinsPerMonth: 0},
		{Level: 1, Name: "bronze", XPThreshold: decimal.NewFromInt(100), CashbackRate: decimal.RequireFromString("0.01"), FreeSpinsPerMonth: 5},
		{Level: 2, Name: "silver", XPThreshold: decimal.NewFromInt(500), CashbackRate: decimal.RequireFromString("0.03"), FreeSpinsPerMonth: 10},
		{Level: 3, Name: "gold", XPThreshold: decimal.NewFromInt(2000), CashbackRate: decimal.RequireFromString("0.05"), FreeSpinsPerMonth: 20},
	}
	// DoNothing keeps operator-tuned thresholds intact on reruns.
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&levels).Error
}

func seedGames(ctx context.Context, db *gorm.DB) error {
	games := []game.Game{
		{
			GameID:        "slots-classic",
			Name:          "Classic Fruits",
			Provider:      "house",
			RTP:           decimal.RequireFromString("0.96"),
			MinBet:        decimal.RequireFromString("0.10"),
			MaxBet:        decimal.NewFromInt(100),
			AllowsBonus:   true,
			VipMultiplier: decimal.NewFromInt(1),
			Enabled:       true,
		},
		{
			GameID:        "slots-mega-fortune",
			Name:          "Mega Fortune",
			Provider:      "house",
			RTP:           decimal.RequireFromString("0.92"),
			MinBet:        decimal.NewFromInt(1),
			MaxBet:        decimal.NewFromInt(50),
			AllowsBonus:   false,
			VipMultiplier: decimal.NewFromInt(2),
			JackpotGroup:  "mega",
			JackpotLevel:  "grand",
			Enabled:       true,
		},
		{
			GameID:        "blackjack-pro",
			Name:          "Blackjack Pro",
			Provider:      "tablemasters",
			RTP:           decimal.RequireFromString("0.995"),
			MinBet:        decimal.NewFromInt(5),
			MaxBet:        decimal.NewFromInt(500),
			AllowsBonus:   false,
			VipMultiplier: decimal.RequireFromString("0.5"),
			Enabled:       true,
		},
		{
			GameID:        "roulette-eu",
			Name:          "European Roulette",
			Provider:      "tablemasters",
			RTP:           decimal.RequireFromString("0.973"),
			MinBet:        decimal.NewFromInt(1),
			MaxBet:        decimal.NewFromInt(200),
			AllowsBonus:   true,
			VipMultiplier: decimal.RequireFromString("0.8"),
			Enabled:       true,
		},
	}
	for i := range games {
		if err := db.WithContext(ctx).Save(&games[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedJackpotPools(ctx context.Context, db *gorm.DB) error {
	pools := []jackpot.Pool{
		{Level: "mini", SeedValue: decimal.NewFromInt(100), ContributionRate: decimal.RequireFromString("0.01")},
		{Level: "minor", SeedValue: decimal.NewFromInt(1000), ContributionRate: decimal.RequireFromString("0.005")},
		{Level: "major", SeedValue: decimal.NewFromInt(10000), ContributionRate: decimal.RequireFromString("0.002")},
		{Level: "grand", SeedValue: decimal.NewFromInt(100000), ContributionRate: decimal.RequireFromString("0.001")},
	}
	for i := range pools {
		pools[i].PoolID = uuid.New().String()
		pools[i].GroupName = "mega"
		pools[i].CurrentValue = pools[i].SeedValue
		pools[i].IsActive = true
	}
	// Reruns must not reset live pool values.
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_name"}, {Name: "level"}},
			DoNothing: true,
		}).
		Create(&pools).Error
}

func seedDemoWallets(ctx context.Context, db *gorm.DB, cfg *config.Config, logg *logger.Logger) error {
	walletSvc := wallet.NewService(wallet.NewRepository(db), database.NewTxRunner(db), cfg.DefaultCurrency, logg)

	users := []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
	}
	operators := []string{"lucky-spin", "golden-bet"}

	for _, userID := range users {
		for _, operatorID := range operators {
			// Deposits are idempotent per reference, so reruns replay
			// instead of double-funding.
			_, err := walletSvc.Deposit(ctx, wallet.FundsRequest{
				UserID:      userID,
				OperatorID:  operatorID,
				Amount:      decimal.NewFromInt(1000),
				ReferenceID: fmt.Sprintf("seed:deposit:%s:%s", userID, operatorID),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
