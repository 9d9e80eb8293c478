package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"studyplanner/internal/app"
	"studyplanner/internal/config"
	"studyplanner/internal/logger"
	"studyplanner/internal/observability"
)

// Worker consumes calendar refresh messages and renders calendars into the cache.
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn("config", "warning", w)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != app.BackendRedis {
		log.Fatal("worker needs QUEUE_BACKEND=redis; the memory queue is drained by the api process",
			"queue", cfg.QueueBackend)
	}
	if cfg.CacheBackend != app.BackendRedis {
		log.Warn("worker cache is not shared with the api", "cache", cfg.CacheBackend)
	}

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "studyplanner-worker",
		Environment: cfg.Env,
		Endpoint:    cfg.OtelEndpoint,
		SampleRatio: cfg.OtelSampleRatio,
	})
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(tctx)
	}()

	rt, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("runtime init failed", "error", err)
	}
	defer rt.Close()

	messages, err := rt.Queue.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", "error", err)
	}

	log.Info("worker started, waiting for messages")
	rt.Service.RunRefresher(ctx, messages)
	log.Info("worker stopped")
}
