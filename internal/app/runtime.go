// Package app wires configuration into the stores, cache, queue and
// timetable service shared by the binaries.
package app

import (
	"context"
	"fmt"

	"studyplanner/internal/cache"
	"studyplanner/internal/calendar"
	"studyplanner/internal/config"
	"studyplanner/internal/logger"
	"studyplanner/internal/queue"
	"studyplanner/internal/store"
	"studyplanner/internal/timetable"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Runtime owns every long-lived dependency of a process.
type Runtime struct {
	DB      *store.DB
	Redis   *store.Redis
	Cache   cache.Cache
	Queue   queue.Queue
	Service *timetable.Service
}

// New connects the database (required) and redis (only when a backend
// needs it) and builds the timetable service.
func New(ctx context.Context, cfg config.App, log *logger.Logger) (*Runtime, error) {
	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	rt := &Runtime{DB: db}

	if cfg.CacheBackend == BackendRedis || cfg.QueueBackend == BackendRedis {
		rt.Redis, err = store.NewRedis(cfg.RedisAddr)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		if !rt.Redis.Healthy(ctx) {
			log.Warn("redis not reachable at startup", "addr", cfg.RedisAddr)
		}
	}

	switch cfg.CacheBackend {
	case BackendRedis:
		rt.Cache = cache.NewRedis(rt.Redis.Client, "")
	case BackendMemory:
		rt.Cache = cache.NewInMemory()
	case "none", "":
	default:
		rt.Close()
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	switch cfg.QueueBackend {
	case BackendRedis:
		rt.Queue = queue.NewRedisQueue(rt.Redis.Client, "")
	case BackendMemory:
		rt.Queue = queue.NewInMemory(256)
	case "none", "":
	default:
		rt.Close()
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	repo := timetable.NewRepository(db.Client)
	exporter := calendar.NewExporter(calendar.NewICSEncoder(cfg.Location()))
	rt.Service = timetable.NewService(repo, repo, exporter, timetable.Options{
		Cache:        rt.Cache,
		Queue:        rt.Queue,
		Logger:       log,
		Location:     cfg.Location(),
		TimetableTTL: cfg.TimetableCacheTTL,
		CalendarTTL:  cfg.CalendarCacheTTL,
	})
	return rt, nil
}

// Close releases connections; it is safe on a partly built Runtime.
func (rt *Runtime) Close() {
	_ = rt.Redis.Close()
	_ = rt.DB.Close()
}
