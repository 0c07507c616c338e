package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/auth"
	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/events"
	apphttp "github.com/konman95/mainst.ai/internal/http"
	"github.com/konman95/mainst.ai/internal/http/handlers"
	"github.com/konman95/mainst.ai/internal/ownercover"
	"github.com/konman95/mainst.ai/internal/repositories"
	"github.com/konman95/mainst.ai/internal/repositories/memory"
	"github.com/konman95/mainst.ai/internal/services"
	"github.com/konman95/mainst.ai/internal/siteparser"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var repos repositories.Set
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		repos = repositories.NewPostgresSet(pool)
	default:
		repos = memory.New().Set()
	}

	// Redis (optional)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		repos = repos.WithSettingsCache(rdb, cfg.SettingsCacheTTL, log)
	}

	// Events
	var bus events.Bus = events.NewMemoryBus()
	if rdb != nil {
		bus = events.NewRedisBus(rdb, log)
	}

	// Services
	evaluator := ownercover.NewEvaluator(nil)
	transcripts := services.NewTranscriptService(repos.Conversations)
	auditService := services.NewAuditService(repos.Audit, bus, log)
	ownerCoverService := services.NewOwnerCoverService(repos.Settings, repos.Actions, repos.Contacts, transcripts, auditService, evaluator, bus, cfg, log)
	actionService := services.NewActionService(repos.Actions, repos.Contacts, transcripts, auditService, bus, log)
	contactService := services.NewContactService(repos.Contacts, log)
	siteParser := siteparser.NewParser(cfg.SiteFetchTimeout, cfg.SiteFetchRetries, log)
	profileService := services.NewProfileService(repos.Profiles, siteParser)
	inference := services.NewInferenceClient(cfg.HFBaseURL, cfg.HFModel, cfg.HFToken, log)
	chatService := services.NewChatService(profileService, transcripts, auditService, inference, log)
	dashboardService := services.NewDashboardService(repos.Actions, repos.Audit, repos.Contacts, cfg)
	followUpService := services.NewFollowUpService(repos.Contacts, repos.Actions, repos.Settings, transcripts, auditService, evaluator, bus, cfg, log)

	// Handlers
	wsHub := handlers.NewWSHub(bus, log)
	h := apphttp.Handlers{
		Auth:       handlers.NewAuthHandler(cfg, log),
		Meta:       handlers.NewMetaHandler(),
		OwnerCover: handlers.NewOwnerCoverHandler(ownerCoverService, log),
		Action:     handlers.NewActionHandler(actionService, log),
		Audit:      handlers.NewAuditHandler(auditService, log),
		Contact:    handlers.NewContactHandler(contactService, log),
		Chat:       handlers.NewChatHandler(chatService, log),
		Profile:    handlers.NewProfileHandler(profileService, log),
		Dashboard:  handlers.NewDashboardHandler(dashboardService, log),
		Cron:       handlers.NewCronHandler(followUpService, cfg.CronSecret, log),
		WSHub:      wsHub,
	}

	// Start WS hub
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe ws hub", zap.Error(err))
	}

	app := apphttp.NewApp()
	resolver := auth.NewResolver(cfg.JWTSecret, cfg.AllowDevTokens)
	apphttp.SetupRouter(app, cfg, log, rdb, resolver, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr), zap.String("storage", cfg.StorageBackend))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
