package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/notify"
)

// Notify Bridge subscribes to owner cover events on Redis and alerts the
// owner (webhook and/or Slack) whenever an action waits for approval.

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

	if cfg.RedisURL == "" {
		log.Fatal("notify-bridge requires REDIS_URL")
	}

	var senders []notify.Sender
	if cfg.NotifyWebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.NotifyWebhookURL))
	}
	if cfg.NotifySlackWebhookURL != "" {
		senders = append(senders, notify.NewSlackSender(cfg.NotifySlackWebhookURL, cfg.AppURL))
	}
	if len(senders) == 0 {
		log.Fatal("notify-bridge requires NOTIFY_WEBHOOK_URL or NOTIFY_SLACK_WEBHOOK_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	bus := events.NewRedisBus(rdb, log)
	dispatcher := notify.NewDispatcher(log, senders...)

	if err := bus.Subscribe(ctx, events.StreamOwnerCover, dispatcher.Handle(ctx)); err != nil {
		log.Fatal("failed to subscribe", zap.Error(err))
	}

	log.Info("notify-bridge started", zap.Int("senders", dispatcher.Len()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}
