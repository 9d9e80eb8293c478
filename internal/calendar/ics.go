package calendar

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"studyplanner/internal/apperr"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	FileName    = "timetable.ics"

	productID = "-//studyplanner//timetable//EN"
	uidDomain = "studyplanner"
)

// Encoder serializes events into a calendar payload.
type Encoder interface {
	Encode(events []Event) ([]byte, error)
}

// ICSEncoder writes RFC 5545 calendars. Tuples are interpreted in Location
// and written as UTC instants.
type ICSEncoder struct {
	Location *time.Location
	Now      func() time.Time
}

// NewICSEncoder returns an encoder for tuples in loc (UTC when nil).
func NewICSEncoder(loc *time.Location) *ICSEncoder {
	if loc == nil {
		loc = time.UTC
	}
	return &ICSEncoder{Location: loc, Now: time.Now}
}

// Encode validates every event before writing any of them, so a rejected
// event yields an export error and no payload.
func (e *ICSEncoder) Encode(events []Event) ([]byte, error) {
	type span struct{ start, end time.Time }
	spans := make([]span, len(events))
	for i, ev := range events {
		start, err := e.instant(ev.Start)
		if err != nil {
			return nil, apperr.Export(fmt.Errorf("event %d (%s) start: %w", i, ev.Title, err))
		}
		end, err := e.instant(ev.End)
		if err != nil {
			return nil, apperr.Export(fmt.Errorf("event %d (%s) end: %w", i, ev.Title, err))
		}
		if ev.End.Before(ev.Start) {
			return nil, apperr.Export(fmt.Errorf("event %d (%s): end %s is before start %s", i, ev.Title, ev.End, ev.Start))
		}
		if ev.Status != StatusConfirmed && ev.Status != StatusTentative {
			return nil, apperr.Export(fmt.Errorf("event %d (%s): unsupported status %q", i, ev.Title, ev.Status))
		}
		spans[i] = span{start: start, end: end}
	}

	stamp := e.Now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	for i, ev := range events {
		uid := ev.UID
		if uid == "" {
			uid = fmt.Sprintf("event-%d", i)
		}
		vevent := cal.AddEvent(uid + "@" + uidDomain)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(spans[i].start)
		vevent.SetEndAt(spans[i].end)
		vevent.SetSummary(ev.Title)
		vevent.SetDescription(ev.Description)
		if ev.Status == StatusConfirmed {
			vevent.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			vevent.SetStatus(ics.ObjectStatusTentative)
		}
	}
	return []byte(cal.Serialize()), nil
}

var errBadTuple = errors.New("invalid date-time tuple")

func (e *ICSEncoder) instant(d DateTime) (time.Time, error) {
	if d.Month() < 1 || d.Month() > 12 || d.Hour() < 0 || d.Hour() > 23 || d.Minute() < 0 || d.Minute() > 59 {
		return time.Time{}, fmt.Errorf("%w: %s", errBadTuple, d)
	}
	t := time.Date(d.Year(), time.Month(d.Month()), d.Day(), d.Hour(), d.Minute(), 0, 0, e.Location)
	if t.Day() != d.Day() || int(t.Month()) != d.Month() {
		return time.Time{}, fmt.Errorf("%w: %s", errBadTuple, d)
	}
	return t, nil
}
