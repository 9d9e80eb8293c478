// Package planner holds the study timetable domain: subjects, preferences,
// exclusions and the allocator that turns them into daily session slots.
// Nothing in this package performs I/O.
package planner

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage layout of civil dates.
const DateLayout = "2006-01-02"

// Subject is something to study, due on ExamDate.
type Subject struct {
	ID       string    `json:"id"`
	Owner    string    `json:"user_id"`
	Name     string    `json:"name"`
	ExamDate time.Time `json:"-"`
}

// StudyPreferences is the stored daily availability of an owner.
// StudyDaysPerWeek and HoursPerDay are kept for the client but the
// allocator only reads the StartTime/EndTime window.
type StudyPreferences struct {
	Owner            string  `json:"user_id"`
	StudyDaysPerWeek int     `json:"study_days_per_week"`
	HoursPerDay      float64 `json:"hours_per_day"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
}

// Exclusion blocks a whole day for an owner.
type Exclusion struct {
	ID     string    `json:"id"`
	Owner  string    `json:"user_id"`
	Date   time.Time `json:"-"`
	Reason string    `json:"reason"`
}

// SessionSlot is a proposed, not yet persisted, allocation.
type SessionSlot struct {
	Date      string `json:"date"`
	Subject   string `json:"subject"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// StudySession is a persisted slot.
type StudySession struct {
	ID          string `json:"id"`
	Owner       string `json:"user_id"`
	SubjectID   string `json:"subject_id"`
	SessionDate string `json:"session_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Completed   bool   `json:"completed"`
}

// SessionWithSubject is a persisted session joined with its subject name.
type SessionWithSubject struct {
	StudySession
	SubjectName string `json:"subject_name"`
}

// Day truncates t to midnight UTC of its civil date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

func (s Subject) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID       string `json:"id"`
		Owner    string `json:"user_id"`
		Name     string `json:"name"`
		ExamDate string `json:"exam_date"`
	}
	return json.Marshal(wire{ID: s.ID, Owner: s.Owner, Name: s.Name, ExamDate: s.ExamDate.Format(DateLayout)})
}

func (e Exclusion) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID     string `json:"id"`
		Owner  string `json:"user_id"`
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	return json.Marshal(wire{ID: e.ID, Owner: e.Owner, Date: e.Date.Format(DateLayout), Reason: e.Reason})
}
