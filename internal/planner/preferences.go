package planner

import (
	"errors"
	"fmt"

	"studyplanner/internal/apperr"
)

// BreakHours is the fixed gap between two sessions of the same day.
const BreakHours = 1.0

var (
	// ErrNoPreferences means the owner never stored a study window.
	ErrNoPreferences = errors.New("study preferences not set")
	// ErrInvalidPreferences means the stored window cannot be used.
	ErrInvalidPreferences = errors.New("invalid study preferences")
)

// ResolvedPreferences is the numeric form of a daily study window.
type ResolvedPreferences struct {
	AvailableStart    float64
	AvailableEnd      float64
	AvailableDuration float64
	Break             float64
}

// ResolvePreferences converts the stored window into fractional hours.
func ResolvePreferences(p *StudyPreferences) (ResolvedPreferences, error) {
	if p == nil {
		return ResolvedPreferences{}, apperr.E(apperr.KindValidation, "Study preferences not set.", ErrNoPreferences)
	}
	start, err := ParseClock(p.StartTime)
	if err != nil {
		return ResolvedPreferences{}, invalid("start_time: %v", err)
	}
	end, err := ParseClock(p.EndTime)
	if err != nil {
		return ResolvedPreferences{}, invalid("end_time: %v", err)
	}
	if start >= end {
		return ResolvedPreferences{}, invalid("start_time %s must be before end_time %s", p.StartTime, p.EndTime)
	}
	return ResolvedPreferences{
		AvailableStart:    start,
		AvailableEnd:      end,
		AvailableDuration: end - start,
		Break:             BreakHours,
	}, nil
}

func invalid(format string, args ...any) error {
	msg := fmt.Sprintf("%s: %s", ErrInvalidPreferences, fmt.Sprintf(format, args...))
	return apperr.E(apperr.KindValidation, msg, ErrInvalidPreferences)
}
