package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/core/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/handlers"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/SscSPs/neuron_ledger/internal/platform/config"
	"github.com/SscSPs/neuron_ledger/internal/platform/idempotency"
	"github.com/SscSPs/neuron_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/neuron_ledger/internal/repositories/memory"
	"github.com/SscSPs/neuron_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "neuron-ledger"

// @title Neuron Ledger API
// @version 1.0
// @description Receivables and payables ledger: invoices, collections, allocations and expense approvals.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	repos, closeRepos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = idempotency.NewRedisClient(ctx, idempotency.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Redis connection established.", slog.String("addr", cfg.RedisAddr))
	}

	idempotencyStore := newIdempotencyStore(redisClient)
	defer func() {
		if cerr := idempotencyStore.Close(); cerr != nil {
			logger.Error("Error closing idempotency store", slog.String("error", cerr.Error()))
		}
	}()

	ipLimiter, err := newRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			logger.Error("Failed to register validators", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	serviceContainer := services.NewServiceContainer(cfg, repos)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyKeyHeader}

	// Global middleware (tracing, logging, recovery, rate limiting)
	r.Use(
		cors.New(corsConfig),
		otelgin.Middleware(serviceName),
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.RateLimit(ipLimiter),
	)

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, idempotencyStore)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("default_currency", cfg.DefaultCurrency))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openRepositories connects to PostgreSQL and applies migrations, or falls back to the
// in-memory store when no database URL is configured.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction {
			logger.Warn("No database configured in production; ledger data will not survive a restart")
		}
		logger.Info("Using in-memory ledger store.")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func newIdempotencyStore(client *redis.Client) idempotency.Store {
	if client == nil {
		return idempotency.NewMemoryStore(time.Minute)
	}
	return idempotency.NewRedisStore(client, "")
}

func newRateLimiter(rateFormat string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(rateFormat)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return limiter.New(limitermemory.NewStore(), rate), nil
	}
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "neuron:ratelimit"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
