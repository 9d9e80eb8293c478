package timetable

import (
	"context"
	"time"

	"studyplanner/internal/queue"
)

// RunRefresher consumes calendar.refresh messages until ctx ends or the
// channel closes. Other message types are ignored.
func (s *Service) RunRefresher(ctx context.Context, msgs <-chan queue.Message) {
	for msg := range msgs {
		if msg.Type != queue.TypeCalendarRefresh {
			s.log.Debug("ignoring message", "type", msg.Type)
			continue
		}
		owner := string(msg.Body)
		start := time.Now()
		if err := s.RefreshCalendar(ctx, owner); err != nil {
			s.log.Warn("calendar refresh failed", "owner", owner, "error", err)
			continue
		}
		s.log.Debug("calendar refreshed", "owner", owner, "took", time.Since(start))
	}
}
