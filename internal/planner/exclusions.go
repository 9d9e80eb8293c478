package planner

import "time"

// ExclusionSet is a set of civil dates with no sessions.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from dates; time of day is ignored.
func NewExclusionSet(dates ...time.Time) ExclusionSet {
	set := make(ExclusionSet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

// ExclusionsOf collects the dates of stored exclusions.
func ExclusionsOf(items []Exclusion) ExclusionSet {
	set := make(ExclusionSet, len(items))
	for _, e := range items {
		set.Add(e.Date)
	}
	return set
}

func (s ExclusionSet) Add(d time.Time) {
	s[d.Format(DateLayout)] = struct{}{}
}

// Contains is safe on a nil set.
func (s ExclusionSet) Contains(d time.Time) bool {
	_, ok := s[d.Format(DateLayout)]
	return ok
}
