package timetable

import (
	"context"
	"errors"
	"time"

	"studyplanner/internal/queue"
)

// Cached payloads live under a per-owner generation. A write bumps the
// generation, which orphans every payload rendered before it; readers and
// the worker read the generation before reading the database, so nothing
// they store can describe data older than its key.
const (
	timetableKind = "timetable"
	calendarKind  = "calendar"
)

func generationKey(kind, owner string) string {
	return kind + "-gen:" + owner
}

// generation returns the current generation, creating one when missing.
// ok is false when there is no usable cache.
func (s *Service) generation(ctx context.Context, kind, owner string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	key := generationKey(kind, owner)
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return "", false
	}
	if ok && len(val) > 0 {
		return string(val), true
	}
	gen := newID()
	if err := s.cache.Set(ctx, key, []byte(gen), 0); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
		return "", false
	}
	return gen, true
}

// invalidate replaces the owner's generation and drops the payload the old
// one served. Previews of earlier days are left to their TTL.
func (s *Service) invalidate(ctx context.Context, kind, owner string) {
	if s.cache == nil {
		return
	}
	key := generationKey(kind, owner)
	old, hadOld, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
	}
	if err := s.cache.Set(ctx, key, []byte(newID()), 0); err != nil {
		s.log.Error("cache invalidation failed", "key", key, "error", err)
		return
	}
	if !hadOld || len(old) == 0 {
		return
	}
	stale := calendarKey(owner, string(old))
	if kind == timetableKind {
		stale = timetableKey(owner, string(old), s.Today())
	}
	if err := s.cache.Del(ctx, stale); err != nil {
		s.log.Warn("cache delete failed", "key", stale, "error", err)
	}
}

// invalidateCalendar orphans the cached calendar and asks the worker to
// render a fresh one.
func (s *Service) invalidateCalendar(ctx context.Context, owner string) {
	s.invalidate(ctx, calendarKind, owner)
	if s.queue == nil {
		return
	}
	err := s.queue.Publish(ctx, queue.Message{Type: queue.TypeCalendarRefresh, Body: []byte(owner)})
	if errors.Is(err, queue.ErrFull) {
		s.log.Warn("calendar refresh dropped, queue full", "owner", owner)
	} else if err != nil {
		s.log.Warn("queue publish failed", "owner", owner, "error", err)
	}
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return val, ok
}

func (s *Service) cacheSet(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, val, ttl); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}
