package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitcoin-wallet-ledger/config"
	"bitcoin-wallet-ledger/internal/adapter/exchange"
	httpHandler "bitcoin-wallet-ledger/internal/adapter/http/handler"
	pgStorage "bitcoin-wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "bitcoin-wallet-ledger/internal/adapter/storage/redis"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/internal/service"
	"bitcoin-wallet-ledger/pkg/keylock"
	"bitcoin-wallet-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Bitcoin Wallet Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	keyGen := service.NewAPIKeyGenerator()
	locker := keylock.NewManager(cfg.Ledger.LockTimeout)
	rateSource := exchange.NewCoinGeckoClient(cfg.Exchange, log)

	// Initialize business services
	userSvc := service.NewUserService(userRepo, keyGen, log)
	ledgerSvc := service.NewLedgerService(
		userRepo,
		walletRepo,
		txRepo,
		transactor,
		locker,
		cfg.Ledger.InitialBalanceSatoshis,
		cfg.Ledger.MaxWalletsPerUser,
		log,
	)
	exchangeSvc := service.NewExchangeService(rateSource, rateCache, cfg.Exchange.CacheTTL, log)
	statsSvc := service.NewStatsService(txRepo, exchangeSvc, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		UserSvc:        userSvc,
		LedgerSvc:      ledgerSvc,
		StatsSvc:       statsSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
