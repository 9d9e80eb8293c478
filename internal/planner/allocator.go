package planner

import "time"

// AllocationStats describes one allocator run.
type AllocationStats struct {
	Days             int // calendar days visited
	ExcludedDays     int
	ScheduledDays    int
	NonPositiveSlots int // slots whose duration came out <= 0
}

// Allocate produces one slot per (day, still active subject) pair from
// today through the latest exam date. It is deterministic in its inputs.
func Allocate(subjects []Subject, prefs ResolvedPreferences, exclusions ExclusionSet, today time.Time) []SessionSlot {
	slots, _ := AllocateWithStats(subjects, prefs, exclusions, today)
	return slots
}

// AllocateWithStats is Allocate plus counters for logging and metrics.
//
// Each day splits the window evenly between the subjects whose exam is on
// or after that day, keeping their input order and a fixed break between
// consecutive sessions. Durations are not clamped: a window too short for
// the number of subjects yields zero or negative length slots.
func AllocateWithStats(subjects []Subject, prefs ResolvedPreferences, exclusions ExclusionSet, today time.Time) ([]SessionSlot, AllocationStats) {
	var stats AllocationStats
	if len(subjects) == 0 {
		return []SessionSlot{}, stats
	}

	breakTime := BreakHours
	maxExam := Day(subjects[0].ExamDate)
	for _, s := range subjects[1:] {
		if exam := Day(s.ExamDate); exam.After(maxExam) {
			maxExam = exam
		}
	}

	slots := []SessionSlot{}
	active := make([]Subject, 0, len(subjects))
	for d := Day(today); !d.After(maxExam); d = d.AddDate(0, 0, 1) {
		stats.Days++
		if exclusions.Contains(d) {
			stats.ExcludedDays++
			continue
		}

		active = active[:0]
		for _, s := range subjects {
			if !Day(s.ExamDate).Before(d) {
				active = append(active, s)
			}
		}
		n := len(active)
		if n == 0 {
			continue
		}
		stats.ScheduledDays++

		duration := (prefs.AvailableDuration - float64(n-1)*breakTime) / float64(n)
		date := d.Format(DateLayout)
		for i, s := range active {
			start := prefs.AvailableStart + float64(i)*(duration+breakTime)
			end := start + duration
			if duration <= 0 {
				stats.NonPositiveSlots++
			}
			slots = append(slots, SessionSlot{
				Date:      date,
				Subject:   s.Name,
				StartTime: FormatTime(start),
				EndTime:   FormatTime(end),
			})
		}
	}
	return slots, stats
}
