package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/agencydesk/agencydesk/internal/agencies"
	"github.com/agencydesk/agencydesk/internal/api"
	"github.com/agencydesk/agencydesk/internal/audit"
	"github.com/agencydesk/agencydesk/internal/auth"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/contacts"
	"github.com/agencydesk/agencydesk/internal/database"
	"github.com/agencydesk/agencydesk/internal/ledger"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/nats"
	"github.com/agencydesk/agencydesk/internal/redis"
	"github.com/agencydesk/agencydesk/internal/server"
	"github.com/agencydesk/agencydesk/internal/usage"
	"github.com/agencydesk/agencydesk/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Postgres
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	logger := slog.Default()

	// NATS event trail (optional). Without it, usage events are dropped and
	// the audit endpoints serve an empty history.
	var natsClient *nats.Client
	if cfg.NATS.URL != "" {
		natsClient, err = nats.NewClient(cfg.NATS.URL, logger)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
	} else {
		slog.Warn("nats url not configured, usage event trail disabled")
	}
	publisher := nats.NewPublisher(natsClient, logger)

	// Services
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	authService := auth.NewService(jwtManager, redisClient)
	userService := users.NewService(users.NewRepository(pool))

	ledgerService := ledger.NewService(ledger.NewPostgresStore(pool), nil)
	agencyService := agencies.NewService(agencies.NewRepository(pool))
	contactService := contacts.NewService(
		contacts.NewRepository(pool), ledgerService, publisher,
		cfg.Quota.DailyLimit, cfg.Quota.PageSize, logger)

	auditRepo := audit.NewRepository(pool)

	// Handlers
	authHandler := auth.NewHandler(authService, userService, logger)
	agencyHandler := agencies.NewHandler(agencyService, logger)
	contactHandler := contacts.NewHandler(contactService, logger)
	usageHandler := usage.NewHandler(ledgerService, auditRepo, cfg.Quota.DailyLimit, logger)

	authRateLimiter := middleware.NewRateLimiter(
		redisClient, cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindowSec)

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authRateLimiter.Middleware,
	}
	if natsClient != nil {
		routerCfg.EventBusHealthy = natsClient.Healthy
	}

	handlers := api.HandlerSet{
		Register:       authHandler.Register,
		Login:          authHandler.Login,
		Refresh:        authHandler.Refresh,
		Logout:         authHandler.Logout,
		ListAgencies:   agencyHandler.List,
		ListContacts:   contactHandler.List,
		GetUsage:       usageHandler.Get,
		ListUsageLogs:  usageHandler.ListLogs,
		AuthMiddleware: auth.Middleware(authService),
	}

	router := api.NewRouter(pool, routerCfg, handlers)

	// Audit consumer
	if natsClient != nil {
		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		defer cancelConsumer()

		consumer := audit.NewConsumer(natsClient, auditRepo, logger)
		go func() {
			if err := consumer.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
