package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"chainride/internal/app"
	"chainride/internal/config"
	"chainride/internal/geocode"
	"chainride/internal/handler"
	"chainride/internal/ledger"
	internalRedis "chainride/internal/redis"
	"chainride/internal/repository/mongodb"
	"chainride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	log := newLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the Redis client can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := mongodb.NewDatabase(ctx, cfg.Mongo)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer db.Client().Disconnect(context.Background())
	log.Info("connected to MongoDB")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	server, err := wireServer(ctx, db, redisClient, nrApp, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire server")
	}

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	ctx context.Context,
	db *mongo.Database,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *logrus.Logger,
) (*http.Server, error) {
	// Ledger node client and gateway.
	rpcClient := ledger.NewRPCClient(cfg.Ledger.RPCURL, cfg.Ledger.CallTimeout)
	gateway := ledger.NewGateway(rpcClient, ledger.GatewayConfig{
		Contracts:   cfg.Ledger.ContractAddresses,
		GasLimit:    cfg.Ledger.GasLimit,
		GasPriceWei: cfg.Ledger.GasPriceWei,
	}, log)

	// The account pool comes from config, falling back to the node's own
	// unlocked accounts (the development setup).
	pool := cfg.Ledger.AccountPool
	if len(pool) == 0 {
		accounts, err := rpcClient.Accounts(ctx)
		if err != nil {
			return nil, err
		}
		pool = accounts
	}

	counter := internalRedis.NewCounterStore(redisClient)
	allocator, err := ledger.NewAccountAllocator(pool, counter)
	if err != nil {
		return nil, err
	}

	// Repositories.
	userRepo := mongodb.NewUserRepository(db)
	rideRepo := mongodb.NewRideRepository(db)

	// Services.
	geocoder, err := geocode.NewGoogleGeocoder(cfg.Geocoder.APIKey)
	if err != nil {
		return nil, err
	}
	settlementService := service.NewSettlementService(gateway, rideRepo, cfg.Ledger.SettlementDelay, log)
	rideService := service.NewRideService(rideRepo, userRepo, geocoder, settlementService, log)
	userService := service.NewUserService(userRepo, allocator, log)

	// Handlers.
	userHandler := handler.NewUserHandler(userService)
	rideHandler := handler.NewRideHandler(rideService)
	settlementHandler := handler.NewSettlementHandler(settlementService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:       userHandler,
		RideHandler:       rideHandler,
		SettlementHandler: settlementHandler,
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
