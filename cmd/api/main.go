package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cross-asset-gateway/config"
	"cross-asset-gateway/internal/adapter/chain"
	httpHandler "cross-asset-gateway/internal/adapter/http/handler"
	"cross-asset-gateway/internal/adapter/storage/memory"
	pgStorage "cross-asset-gateway/internal/adapter/storage/postgres"
	redisStorage "cross-asset-gateway/internal/adapter/storage/redis"
	"cross-asset-gateway/internal/core/ports"
	"cross-asset-gateway/internal/service"
	"cross-asset-gateway/pkg/logger"
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
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Cross-Asset Gateway")

	ctx := context.Background()

	// Fee parameters are validated up front so a bad config fails the boot,
	// not the first payment.
	protocolFeeBps, err := cfg.Fees.ProtocolFeeBps()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid protocol fee configuration")
	}
	fulfillerFee, err := cfg.Fees.FulfillerFee()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid fulfiller fee configuration")
	}
	slippageBps, err := cfg.Swap.Slippage()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid slippage configuration")
	}

	// Storage backends
	var (
		assetRepo      ports.AssetRepository
		merchantRepo   ports.MerchantRepository
		pathRepo       ports.PathRepository
		escrowRepo     ports.EscrowStateRepository
		queryRepo      ports.QueryRepository
		journalRepo    ports.JournalRepository
		cache          ports.SettlementCache
		consumed       ports.ConsumedHashStore
		transactor     ports.DBTransactor
		rateLimitStore *redisStorage.RateLimitStore
		healthCheckers []ports.HealthChecker
	)

	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		assetRepo = pgStorage.NewAssetRepo(pool)
		merchantRepo = pgStorage.NewMerchantRepo(pool)
		pathRepo = pgStorage.NewPathRepo(pool)
		escrowRepo = pgStorage.NewEscrowRepo(pool)
		queryRepo = pgStorage.NewQueryRepo(pool)
		journalRepo = pgStorage.NewJournalRepo(pool)
		transactor = pgStorage.NewTransactor(pool)
		cache = redisStorage.NewSettlementCache(rdb)
		consumed = redisStorage.NewConsumedHashStore(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
		}

	case "memory":
		assetRepo = memory.NewAssetRepo()
		merchantRepo = memory.NewMerchantRepo()
		pathRepo = memory.NewPathRepo()
		escrowRepo = memory.NewEscrowRepo()
		queryRepo = memory.NewQueryRepo()
		journalRepo = memory.NewJournalRepo()
		transactor = memory.NewTransactor()
		cache = memory.NewSettlementCache()
		consumed = memory.NewConsumedHashStore()

	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("Unknown storage driver")
	}

	// Chain adapters
	ethClient, err := chain.Dial(ctx, cfg.Chain, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chain RPC")
	}
	defer ethClient.Close()

	feeds := chain.NewFeedProvider(ethClient)
	tokens, err := chain.NewTokenClient(ethClient, cfg.Chain.OperatorKey, cfg.Chain.ChainID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token client")
	}
	swapper, err := chain.NewSwapRouter(ethClient, cfg.Chain.Router(), cfg.Chain.OperatorKey, cfg.Chain.ChainID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize swap router")
	}

	// Core services
	sigSvc := service.NewHMACSignatureService()
	valuationSvc := service.NewValuationService(assetRepo, feeds, log)
	routeSvc := service.NewRouteService(pathRepo, cfg.Chain.Reference(), log)
	escrowSvc := service.NewEscrowService(escrowRepo, consumed, cfg.Chain.ChainID, log)
	payoutSvc := service.NewPayoutService(merchantRepo, tokens, log)

	paymentSvc := service.NewPaymentService(
		valuationSvc,
		routeSvc,
		escrowSvc,
		payoutSvc,
		tokens,
		swapper,
		journalRepo,
		cache,
		transactor,
		service.PaymentParams{
			Custody:        cfg.Chain.Custody(),
			Treasury:       cfg.Chain.Treasury(),
			FeeExemptAsset: cfg.Chain.FeeExempt(),
			ProtocolFeeBps: protocolFeeBps,
			SlippageBps:    slippageBps,
		},
		log,
	)

	invoker := service.NewCallbackService(sigSvc, cfg.Query.CallbackSecret, &http.Client{Timeout: cfg.Query.CallbackTimeout}, log)
	querySvc := service.NewQueryService(
		valuationSvc,
		tokens,
		queryRepo,
		journalRepo,
		cache,
		transactor,
		invoker,
		service.QueryParams{
			Engine:          cfg.Chain.Custody(),
			Custody:         cfg.Chain.Custody(),
			Treasury:        cfg.Chain.Treasury(),
			FeeExemptAsset:  cfg.Chain.FeeExempt(),
			ProtocolFeeBps:  protocolFeeBps,
			FulfillerFeeUsd: fulfillerFee,
			Timeout:         cfg.Query.Timeout,
			CallbackBudget:  cfg.Query.CallbackTimeout,
			ChainID:         cfg.Chain.ChainID,
		},
		log,
	)

	reportingSvc := service.NewReportingService(journalRepo, cache, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ValuationSvc:   valuationSvc,
		RouteSvc:       routeSvc,
		PayoutSvc:      payoutSvc,
		PaymentSvc:     paymentSvc,
		EscrowSvc:      escrowSvc,
		QuerySvc:       querySvc,
		ReportingSvc:   reportingSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
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
