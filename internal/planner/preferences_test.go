package planner

import (
	"errors"
	"math"
	"testing"

	"studyplanner/internal/apperr"
)

func TestResolvePreferences(t *testing.T) {
	res, err := ResolvePreferences(&StudyPreferences{StartTime: "08:30", EndTime: "17:15:00"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.AvailableStart != 8.5 || res.AvailableEnd != 17.25 {
		t.Fatalf("window: got=%v-%v want=8.5-17.25", res.AvailableStart, res.AvailableEnd)
	}
	if math.Abs(res.AvailableDuration-8.75) > 1e-9 {
		t.Fatalf("duration: got=%v want=8.75", res.AvailableDuration)
	}
	if res.Break != 1 {
		t.Fatalf("break: got=%v want=1", res.Break)
	}
}

func TestResolvePreferencesErrors(t *testing.T) {
	cases := []struct {
		name  string
		prefs *StudyPreferences
		want  error
	}{
		{"missing", nil, ErrNoPreferences},
		{"equal", &StudyPreferences{StartTime: "09:00", EndTime: "09:00"}, ErrInvalidPreferences},
		{"reversed", &StudyPreferences{StartTime: "18:00", EndTime: "09:00"}, ErrInvalidPreferences},
		{"bad hour", &StudyPreferences{StartTime: "24:00", EndTime: "25:00"}, ErrInvalidPreferences},
		{"bad minute", &StudyPreferences{StartTime: "09:60", EndTime: "10:00"}, ErrInvalidPreferences},
		{"garbage", &StudyPreferences{StartTime: "nine", EndTime: "10:00"}, ErrInvalidPreferences},
		{"empty end", &StudyPreferences{StartTime: "09:00", EndTime: ""}, ErrInvalidPreferences},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolvePreferences(tc.prefs)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error: got=%v want=%v", err, tc.want)
			}
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("kind: got=%v want=validation", apperr.KindOf(err))
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]float64{
		"00:00":    0,
		"9:30":     9.5,
		"23:59":    23 + 59.0/60,
		"12:00:36": 12,
		"07:20:59": 7 + 20.0/60,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("ParseClock(%q): got=%v want=%v", in, got, want)
		}
	}
	for _, bad := range []string{"", "12", "12:", "1:2:3:4", "-1:00", "12:5x", "123:00"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q): expected error", bad)
		}
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{9, "09:00:00"},
		{9.5, "09:30:00"},
		{10.999, "10:59:00"},
		{8 + 7.0/3, "10:20:00"},
		{11 - 1e-12, "10:59:00"},
		{9 + 10.0/60, "09:09:00"},
		{7 + 20.0/60, "07:19:00"},
		{8 + 35.0/60, "08:35:00"},
		{-0.6, "-1:24:00"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.in); got != tc.want {
			t.Fatalf("FormatTime(%v): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	cases := map[string]string{
		"9:05":     "09:05:00",
		"09:05:07": "09:05:07",
	}
	for in, want := range cases {
		got, err := NormalizeClock(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeClock(%q): got=%q err=%v want=%q", in, got, err, want)
		}
	}
}
