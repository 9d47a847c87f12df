package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"casino_platform/internal/bonus"
	"casino_platform/internal/config"
	"casino_platform/internal/database"
	"casino_platform/internal/notify"
	"casino_platform/internal/rewards"
	"casino_platform/internal/vip"
	"casino_platform/internal/wallet"
	"casino_platform/internal/worker"
	"casino_platform/pkg/logger"
)

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

	txRunner := database.NewTxRunner(db)
	walletRepo := wallet.NewRepository(db)
	bonusRepo := bonus.NewRepository(db)
	vipRepo := vip.NewRepository(db)

	vipSvc := vip.NewService(vipRepo, logg)
	if err := vipSvc.WarmLevels(context.Background()); err != nil {
		logg.Fatalf("failed to load vip levels: %v", err)
	}
	bonusSvc := bonus.NewService(bonusRepo, walletRepo, txRunner, cfg.DefaultCurrency, logg)
	rewardSvc := rewards.NewService(bonusSvc, vipSvc, walletRepo, cfg.FreeSpinValue, cfg.BonusWageringFactor, logg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logg.Fatalf("failed to connect to redis: %v", err)
	}
	publisher := notify.NewPublisher(rdb, logg)

	// Telegram mirroring is optional; without a token admin events only
	// go to the pub/sub channel.
	var telegram *notify.TelegramNotifier
	if cfg.TelegramBotToken != "" {
		telegram, err = notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.AdminChatID, logg)
		if err != nil {
			logg.Fatalf("failed to init telegram notifier: %v", err)
		}
	}

	w := worker.NewWorker(publisher, telegram, rewardSvc, logg)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	logg.Infof("worker starting with concurrency %d", cfg.WorkerConcurrency)
	if err := worker.StartWorker(redisOpt, w, cfg.WorkerConcurrency); err != nil {
		logg.Fatalf("worker stopped: %v", err)
	}
}
