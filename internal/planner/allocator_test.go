package planner

import (
	"math"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustResolve(t *testing.T, start, end string) ResolvedPreferences {
	t.Helper()
	res, err := ResolvePreferences(&StudyPreferences{StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("resolve %s-%s: %v", start, end, err)
	}
	return res
}

func TestAllocateSingleSubjectOnExamDay(t *testing.T) {
	subjects := []Subject{{Name: "Math", ExamDate: mustDate(t, "2024-06-10")}}
	got := Allocate(subjects, mustResolve(t, "09:00", "11:00"), nil, mustDate(t, "2024-06-10"))

	want := []SessionSlot{{Date: "2024-06-10", Subject: "Math", StartTime: "09:00:00", EndTime: "11:00:00"}}
	if len(got) != len(want) {
		t.Fatalf("slots: got=%v want=%v", got, want)
	}
	if got[0] != want[0] {
		t.Fatalf("slot: got=%+v want=%+v", got[0], want[0])
	}
}

func TestAllocateSplitsWindowWithBreak(t *testing.T) {
	today := mustDate(t, "2024-03-01")
	tomorrow := today.AddDate(0, 0, 1)
	subjects := []Subject{
		{Name: "Physics", ExamDate: tomorrow},
		{Name: "Chemistry", ExamDate: tomorrow},
	}
	got := Allocate(subjects, mustResolve(t, "09:00", "12:00"), NewExclusionSet(), today)

	want := []SessionSlot{
		{Date: "2024-03-01", Subject: "Physics", StartTime: "09:00:00", EndTime: "10:00:00"},
		{Date: "2024-03-01", Subject: "Chemistry", StartTime: "11:00:00", EndTime: "12:00:00"},
		{Date: "2024-03-02", Subject: "Physics", StartTime: "09:00:00", EndTime: "10:00:00"},
		{Date: "2024-03-02", Subject: "Chemistry", StartTime: "11:00:00", EndTime: "12:00:00"},
	}
	if len(got) != len(want) {
		t.Fatalf("slot count: got=%d want=%d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestAllocateSkipsExcludedToday(t *testing.T) {
	today := mustDate(t, "2024-03-01")
	subjects := []Subject{{Name: "Math", ExamDate: today.AddDate(0, 0, 2)}}
	got := Allocate(subjects, mustResolve(t, "08:00", "10:00"), NewExclusionSet(today), today)

	if len(got) != 2 {
		t.Fatalf("slot count: got=%d want=2 (%v)", len(got), got)
	}
	for _, s := range got {
		if s.Date == "2024-03-01" {
			t.Fatalf("slot on excluded day: %+v", s)
		}
	}
}

func TestAllocateExamTodayAppearsOnce(t *testing.T) {
	today := mustDate(t, "2024-05-05")
	subjects := []Subject{
		{Name: "History", ExamDate: today},
		{Name: "Biology", ExamDate: today.AddDate(0, 0, 3)},
	}
	got := Allocate(subjects, mustResolve(t, "09:00", "17:00"), nil, today)

	count := 0
	for _, s := range got {
		if s.Subject == "History" {
			count++
			if s.Date != "2024-05-05" {
				t.Fatalf("History after exam: %+v", s)
			}
		}
	}
	if count != 1 {
		t.Fatalf("History slots: got=%d want=1", count)
	}
	if len(got) != 5 {
		t.Fatalf("slot count: got=%d want=5", len(got))
	}
}

func TestAllocateEmptySubjects(t *testing.T) {
	got := Allocate(nil, mustResolve(t, "09:00", "10:00"), nil, mustDate(t, "2024-01-01"))
	if got == nil || len(got) != 0 {
		t.Fatalf("slots: got=%#v want empty non-nil", got)
	}
}

func TestAllocateExamsInThePast(t *testing.T) {
	subjects := []Subject{{Name: "Art", ExamDate: mustDate(t, "2023-12-31")}}
	got := Allocate(subjects, mustResolve(t, "09:00", "10:00"), nil, mustDate(t, "2024-01-01"))
	if len(got) != 0 {
		t.Fatalf("slots: got=%v want none", got)
	}
}

func TestAllocateKeepsSubjectOrder(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	subjects := []Subject{
		{Name: "Zoology", ExamDate: today.AddDate(0, 0, 1)},
		{Name: "Algebra", ExamDate: today.AddDate(0, 0, 1)},
		{Name: "Music", ExamDate: today.AddDate(0, 0, 1)},
	}
	got := Allocate(subjects, mustResolve(t, "08:00", "17:00"), nil, today)
	names := []string{got[0].Subject, got[1].Subject, got[2].Subject}
	if names[0] != "Zoology" || names[1] != "Algebra" || names[2] != "Music" {
		t.Fatalf("order: got=%v", names)
	}
	// (9 - 2) / 3 = 2h20m each.
	if got[0].EndTime != "10:20:00" || got[1].StartTime != "11:20:00" || got[2].EndTime != "17:00:00" {
		t.Fatalf("times: got=%+v", got[:3])
	}
}

func TestAllocateDurationsFillWindow(t *testing.T) {
	today := mustDate(t, "2024-02-26")
	windows := [][2]string{{"06:00", "22:00"}, {"09:15", "13:45"}, {"07:00", "19:30"}}
	for _, w := range windows {
		prefs := mustResolve(t, w[0], w[1])
		var subjects []Subject
		for i := 0; i < 4; i++ {
			subjects = append(subjects, Subject{Name: string(rune('A' + i)), ExamDate: today.AddDate(0, 0, i)})
		}
		excluded := NewExclusionSet(today.AddDate(0, 0, 2))
		slots := Allocate(subjects, prefs, excluded, today)

		byDay := map[string][]SessionSlot{}
		for _, s := range slots {
			d := mustDate(t, s.Date)
			if d.Before(today) || d.After(today.AddDate(0, 0, 3)) {
				t.Fatalf("slot outside range: %+v", s)
			}
			if excluded.Contains(d) {
				t.Fatalf("slot on excluded day: %+v", s)
			}
			byDay[s.Date] = append(byDay[s.Date], s)
		}
		for day, daySlots := range byDay {
			n := len(daySlots)
			first := clockOf(t, daySlots[0].EndTime) - clockOf(t, daySlots[0].StartTime)
			var total float64
			for _, s := range daySlots {
				d := clockOf(t, s.EndTime) - clockOf(t, s.StartTime)
				if math.Abs(d-first) > 1.5/60 {
					t.Fatalf("%s: unequal durations %v", day, daySlots)
				}
				total += d
			}
			total += float64(n-1) * BreakHours
			if math.Abs(total-prefs.AvailableDuration) > (float64(n)+0.5)/60 {
				t.Fatalf("%s: durations+breaks=%.4f want=%.4f", day, total, prefs.AvailableDuration)
			}
		}
	}
}

func TestAllocateDeterministic(t *testing.T) {
	today := mustDate(t, "2024-07-01")
	subjects := []Subject{
		{Name: "A", ExamDate: today.AddDate(0, 0, 5)},
		{Name: "B", ExamDate: today.AddDate(0, 0, 2)},
	}
	prefs := mustResolve(t, "10:00", "16:30")
	ex := NewExclusionSet(today.AddDate(0, 0, 1))
	a := Allocate(subjects, prefs, ex, today)
	b := Allocate(subjects, prefs, ex, today)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAllocateNonPositiveDurationsAreEmitted(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	subjects := []Subject{
		{Name: "A", ExamDate: today},
		{Name: "B", ExamDate: today},
		{Name: "C", ExamDate: today},
	}
	slots, stats := AllocateWithStats(subjects, mustResolve(t, "09:00", "11:00"), nil, today)
	if len(slots) != 3 {
		t.Fatalf("slot count: got=%d want=3", len(slots))
	}
	if stats.NonPositiveSlots != 3 {
		t.Fatalf("non-positive: got=%d want=3", stats.NonPositiveSlots)
	}
	// (2 - 2) / 3 = 0: zero-length sessions one hour apart.
	if slots[1].StartTime != "10:00:00" || slots[1].EndTime != "10:00:00" {
		t.Fatalf("middle slot: got=%+v", slots[1])
	}
}

func TestAllocateStats(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	subjects := []Subject{{Name: "A", ExamDate: today.AddDate(0, 0, 3)}}
	_, stats := AllocateWithStats(subjects, mustResolve(t, "09:00", "10:00"), NewExclusionSet(today), today)
	if stats.Days != 4 || stats.ExcludedDays != 1 || stats.ScheduledDays != 3 {
		t.Fatalf("stats: got=%+v", stats)
	}
}

func clockOf(t *testing.T, s string) float64 {
	t.Helper()
	v, err := ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return v
}

func TestAllocateFloorsUnevenWindows(t *testing.T) {
	today := mustDate(t, "2024-04-01")
	subjects := []Subject{
		{Name: "A", ExamDate: today},
		{Name: "B", ExamDate: today},
	}
	cases := []struct {
		start, end string
		want       [2][2]string
	}{
		{"09:10", "12:00", [2][2]string{{"09:09:00", "10:04:00"}, {"11:04:00", "12:00:00"}}},
		{"07:20", "19:50", [2][2]string{{"07:19:00", "13:04:00"}, {"14:04:00", "19:49:00"}}},
		{"08:35", "17:05", [2][2]string{{"08:35:00", "12:19:00"}, {"13:19:00", "17:04:00"}}},
	}
	for _, tc := range cases {
		got := Allocate(subjects, mustResolve(t, tc.start, tc.end), nil, today)
		if len(got) != 2 {
			t.Fatalf("%s-%s: slot count: got=%d want=2", tc.start, tc.end, len(got))
		}
		for i, w := range tc.want {
			if got[i].StartTime != w[0] || got[i].EndTime != w[1] {
				t.Fatalf("%s-%s slot %d: got=%s-%s want=%s-%s",
					tc.start, tc.end, i, got[i].StartTime, got[i].EndTime, w[0], w[1])
			}
		}
	}
}
