package planner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseClock parses "HH:MM" or "HH:MM:SS" on a 24-hour clock and returns
// the time of day in fractional hours. Seconds are validated but do not
// count toward the value.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM or HH:MM:SS", s)
	}
	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		vals[i] = n
	}
	return float64(vals[0]) + float64(vals[1])/60, nil
}

// NormalizeClock re-renders a valid clock time as HH:MM:SS.
func NormalizeClock(s string) (string, error) {
	if _, err := ParseClock(s); err != nil {
		return "", err
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	for len(parts) < 3 {
		parts = append(parts, "00")
	}
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":"), nil
}

// FormatTime renders fractional hours as HH:MM:00: the floored hour, then
// the floored minutes of the remainder. Float error is not corrected, so
// 9+10/60 renders as 09:09:00.
func FormatTime(hours float64) string {
	h := math.Floor(hours)
	m := math.Floor((hours - h) * 60)
	return fmt.Sprintf("%02d:%02d:00", int(h), int(m))
}

// ClockTuple splits a clock time into hour and minute.
func ClockTuple(s string) (hour, minute int, err error) {
	if _, err := ParseClock(s); err != nil {
		return 0, 0, err
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	return hour, minute, nil
}
