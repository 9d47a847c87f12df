package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"casino_platform/internal/bonus"
	"casino_platform/internal/config"
	"casino_platform/internal/database"
	"casino_platform/internal/game"
	"casino_platform/internal/handlers"
	"casino_platform/internal/jackpot"
	"casino_platform/internal/notify"
	"casino_platform/internal/reports"
	"casino_platform/internal/rewards"
	"casino_platform/internal/scheduler"
	"casino_platform/internal/settlement"
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
	gin.SetMode(cfg.GinMode)

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

	txRunner := database.NewTxRunner(db)
	walletRepo := wallet.NewRepository(db)
	gameRepo := game.NewRepository(db)
	jackpotRepo := jackpot.NewRepository(db)
	bonusRepo := bonus.NewRepository(db)
	vipRepo := vip.NewRepository(db)
	betRepo := settlement.NewRepository(db)

	walletSvc := wallet.NewService(walletRepo, txRunner, cfg.DefaultCurrency, logg)
	vipSvc := vip.NewService(vipRepo, logg)
	if err := vipSvc.WarmLevels(context.Background()); err != nil {
		logg.Fatalf("failed to load vip levels: %v", err)
	}
	bonusSvc := bonus.NewService(bonusRepo, walletRepo, txRunner, cfg.DefaultCurrency, logg)
	rewardSvc := rewards.NewService(bonusSvc, vipSvc, walletRepo, cfg.FreeSpinValue, cfg.BonusWageringFactor, logg)
	reportSvc := reports.NewService(db, logg)

	// The pub/sub fan-out and the task queue share one redis.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logg.Fatalf("failed to connect to redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()
	dispatcher := worker.NewDispatcher(asynqClient, logg)

	oracle := settlement.NewRTPOracle(cfg.JackpotOdds)
	settlementSvc := settlement.NewService(
		betRepo,
		gameRepo,
		walletRepo,
		jackpotRepo,
		bonusSvc,
		vipSvc,
		rewardSvc,
		oracle,
		dispatcher,
		txRunner,
		logg,
	)

	// Events settle into redis via the worker; the subscriber feeds them
	// back into this instance's hub for its websocket sessions.
	hub := notify.NewHub()
	subscriber := notify.NewSubscriber(rdb, hub, logg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Errorf("event subscriber stopped: %v", err)
		}
	}()

	sched := scheduler.New(vipSvc, walletSvc, rewardSvc, reportSvc, logg)
	if err := sched.Start(); err != nil {
		logg.Fatalf("failed to start scheduler: %v", err)
	}

	set := &handlers.Set{
		Bets:     handlers.NewBetHandler(settlementSvc, logg),
		Wallets:  handlers.NewWalletHandler(walletSvc, logg),
		Bonuses:  handlers.NewBonusHandler(bonusSvc, dispatcher, logg),
		Games:    handlers.NewGameHandler(gameRepo, logg),
		Jackpots: handlers.NewJackpotHandler(jackpotRepo, logg),
		VIP:      handlers.NewVIPHandler(vipSvc, logg),
		Reports:  handlers.NewReportHandler(reportSvc, logg),
		WS:       handlers.NewWSHandler(hub, logg),
	}

	r := gin.Default()
	set.Register(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logg.Infof("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logg.Info("shutting down")
	cancel()
	<-sched.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorf("server shutdown: %v", err)
	}
	rdb.Close()
}
