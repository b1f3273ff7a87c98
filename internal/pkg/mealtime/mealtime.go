package mealtime

import (
	"fmt"
	"time"
)

// Window is a daily wall-clock interval, inclusive on both ends.
type Window struct {
	Start string // HH:MM
	End   string // HH:MM
}

// Schedule resolves facility-local time questions: which meal window is
// active, whether the mess-cut cutoff has passed, and what "today" means.
// All answers are computed in the configured facility timezone, never UTC
// and never the scanning device's local time.
type Schedule struct {
	loc    *time.Location
	cutoff int // minutes since midnight
	meals  map[string]minuteWindow
}

type minuteWindow struct {
	start int
	end   int
}

// NewSchedule builds a schedule from an IANA timezone name, a HH:MM cutoff
// time and named meal windows.
func NewSchedule(timezone, cutoff string, meals map[string]Window) (*Schedule, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	cutoffMin, err := parseClock(cutoff)
	if err != nil {
		return nil, fmt.Errorf("invalid cutoff time: %w", err)
	}

	s := &Schedule{
		loc:    loc,
		cutoff: cutoffMin,
		meals:  make(map[string]minuteWindow, len(meals)),
	}

	for name, w := range meals {
		start, err := parseClock(w.Start)
		if err != nil {
			return nil, fmt.Errorf("meal %s: invalid start: %w", name, err)
		}
		end, err := parseClock(w.End)
		if err != nil {
			return nil, fmt.Errorf("meal %s: invalid end: %w", name, err)
		}
		if end < start {
			return nil, fmt.Errorf("meal %s: window end before start", name)
		}
		s.meals[name] = minuteWindow{start: start, end: end}
	}

	return s, nil
}

// Location returns the facility timezone
func (s *Schedule) Location() *time.Location {
	return s.loc
}

// Today returns the facility-local calendar date of the given instant,
// normalized to midnight in the facility timezone.
func (s *Schedule) Today(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// CurrentMeal returns the meal whose window contains the given instant.
// Window edges are inclusive. Returns ("", false) when no window is active.
func (s *Schedule) CurrentMeal(now time.Time) (string, bool) {
	minute := clockMinutes(now.In(s.loc))
	for name, w := range s.meals {
		if minute >= w.start && minute <= w.end {
			return name, true
		}
	}
	return "", false
}

// Has reports whether a meal with this name is configured
func (s *Schedule) Has(name string) bool {
	_, ok := s.meals[name]
	return ok
}

// WithinCutoff reports whether the given instant is at or before the
// configured daily cutoff time.
func (s *Schedule) WithinCutoff(now time.Time) bool {
	return clockMinutes(now.In(s.loc)) <= s.cutoff
}

// DateInRange reports whether day falls within [from, to], inclusive.
// All three are compared as calendar dates.
func DateInRange(day, from, to time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(from)) && !d.After(DateOf(to))
}

// RangesOverlap reports whether [aFrom, aTo] and [bFrom, bTo] share any date
func RangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !DateOf(aTo).Before(DateOf(bFrom)) && !DateOf(aFrom).After(DateOf(bTo))
}

// DateOf strips an instant down to its calendar date, anchored at UTC
// midnight. Parsed request dates carry UTC midnights while Schedule.Today
// yields facility-local midnights; every date that is stored or compared
// goes through here first so the two never mix.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseClock(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}
