package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/app"
	"studyplanner/internal/auth"
	"studyplanner/internal/config"
	"studyplanner/internal/httpapi"
	"studyplanner/internal/logger"
	"studyplanner/internal/observability"
)

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", "error", err)
	}
}

func runHTTP(cfg config.App, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "studyplanner-api",
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
		return err
	}
	defer rt.Close()

	// Without a separate worker process the in-memory queue is drained here.
	if cfg.QueueBackend == app.BackendMemory {
		msgs, err := rt.Queue.Consume(ctx)
		if err != nil {
			return err
		}
		go rt.Service.RunRefresher(ctx, msgs)
	}

	checks := map[string]httpapi.HealthCheck{"db": rt.DB.Healthy}
	if rt.Redis != nil {
		checks["redis"] = rt.Redis.Healthy
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler: httpapi.NewHandler(rt.Service, log),
		Log:     log,
		Auth: auth.Options{
			SigningKey:   cfg.JWTSigningKey,
			Issuer:       cfg.JWTIssuer,
			Required:     cfg.AuthRequired,
			DefaultOwner: cfg.DefaultOwnerID,
		},
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
		ServiceName:     "studyplanner-api",
		Tracing:         cfg.OtelEnabled,
		Checks:          checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.HTTPPort, "db", cfg.DBDriver,
			"cache", cfg.CacheBackend, "queue", cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", "error", err)
	}
	log.Info("server exited")
	return nil
}
