// Package calendar turns persisted study sessions into iCalendar events.
package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"studyplanner/internal/apperr"
	"studyplanner/internal/planner"
)

const (
	StatusConfirmed = "CONFIRMED"
	StatusTentative = "TENTATIVE"

	descriptionCompleted = "Study session completed"
	descriptionPending   = "Study session pending"
)

// DateTime is a (year, month, day, hour, minute) tuple.
type DateTime [5]int

func (d DateTime) Year() int   { return d[0] }
func (d DateTime) Month() int  { return d[1] }
func (d DateTime) Day() int    { return d[2] }
func (d DateTime) Hour() int   { return d[3] }
func (d DateTime) Minute() int { return d[4] }

// Before compares tuples lexicographically.
func (d DateTime) Before(o DateTime) bool {
	for i := range d {
		if d[i] != o[i] {
			return d[i] < o[i]
		}
	}
	return false
}

func (d DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", d[0], d[1], d[2], d[3], d[4])
}

// Event is one calendar entry.
type Event struct {
	UID         string
	Title       string
	Start       DateTime
	End         DateTime
	Description string
	Status      string
}

// BuildEvents maps sessions to events. Date and clock times are parsed
// independently of each other.
func BuildEvents(sessions []planner.SessionWithSubject) ([]Event, error) {
	events := make([]Event, 0, len(sessions))
	for _, s := range sessions {
		start, err := parseDateTime(s.SessionDate, s.StartTime)
		if err != nil {
			return nil, apperr.Export(fmt.Errorf("session %s: %w", s.ID, err))
		}
		end, err := parseDateTime(s.SessionDate, s.EndTime)
		if err != nil {
			return nil, apperr.Export(fmt.Errorf("session %s: %w", s.ID, err))
		}
		ev := Event{
			UID:         s.ID,
			Title:       s.SubjectName,
			Start:       start,
			End:         end,
			Description: descriptionPending,
			Status:      StatusTentative,
		}
		if s.Completed {
			ev.Description = descriptionCompleted
			ev.Status = StatusConfirmed
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseDateTime(date, clock string) (DateTime, error) {
	var out DateTime
	dateParts := strings.Split(strings.TrimSpace(date), "-")
	if len(dateParts) != 3 {
		return out, fmt.Errorf("invalid date %q", date)
	}
	for i, p := range dateParts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, fmt.Errorf("invalid date %q", date)
		}
		out[i] = n
	}
	hour, minute, err := planner.ClockTuple(clock)
	if err != nil {
		return out, err
	}
	out[3], out[4] = hour, minute
	return out, nil
}
