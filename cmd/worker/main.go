package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/ownercover"
	"github.com/konman95/mainst.ai/internal/repositories"
	"github.com/konman95/mainst.ai/internal/services"
)

const sweepTimeout = 5 * time.Minute

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

	// The memory backend lives inside the API process.
	if cfg.StorageBackend != config.StoragePostgres {
		log.Fatal("worker requires STORAGE_BACKEND=postgres")
	}
	if !cfg.FollowUpEnabled {
		log.Info("follow-up disabled, worker exiting")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	repos := repositories.NewPostgresSet(pool)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		repos = repos.WithSettingsCache(rdb, cfg.SettingsCacheTTL, log)
	}

	var publisher events.Publisher = events.NewMemoryBus()
	if rdb != nil {
		publisher = events.NewRedisBus(rdb, log)
	}

	transcripts := services.NewTranscriptService(repos.Conversations)
	auditService := services.NewAuditService(repos.Audit, publisher, log)
	followUpService := services.NewFollowUpService(
		repos.Contacts, repos.Actions, repos.Settings, transcripts, auditService,
		ownercover.NewEvaluator(nil), publisher, cfg, log,
	)

	scheduler := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := scheduler.AddFunc(cfg.FollowUpCron, func() {
		runFollowUps(ctx, followUpService, log)
	}); err != nil {
		log.Fatal("invalid FOLLOW_UP_CRON", zap.String("expr", cfg.FollowUpCron), zap.Error(err))
	}

	scheduler.Start()
	log.Info("worker started", zap.String("schedule", cfg.FollowUpCron))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	cancel()
	<-scheduler.Stop().Done()
}

func runFollowUps(ctx context.Context, followUpService *services.FollowUpService, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	res, err := followUpService.Sweep(ctx, nil)
	if err != nil {
		log.Error("follow-up sweep failed", zap.Error(err))
		return
	}
	log.Info("follow-up sweep done",
		zap.Int("sent", res.Sent),
		zap.Int("queued", res.Queued),
		zap.Int("skipped", res.Skipped),
	)
}
