package inventory

import (
	"fmt"
	"slices"
	"time"
)

// RestockTime is one daily restock trigger.
type RestockTime struct {
	Hour   int `yaml:"hour" json:"hour"`
	Minute int `yaml:"minute" json:"minute"`
	Qty    int `yaml:"qty" json:"qty"`
}

// String renders the trigger as HH:MM.
func (t RestockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t RestockTime) minuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// RestockSchedule is an ordered, immutable set of daily triggers.
type RestockSchedule struct {
	times []RestockTime
}

// NewRestockSchedule copies and sorts the triggers by time of day.
func NewRestockSchedule(times []RestockTime) (RestockSchedule, error) {
	sorted := make([]RestockTime, len(times))
	copy(sorted, times)
	for _, t := range sorted {
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return RestockSchedule{}, fmt.Errorf("restock time %02d:%02d out of range", t.Hour, t.Minute)
		}
		if t.Qty < 0 {
			return RestockSchedule{}, fmt.Errorf("restock qty %d at %s is negative", t.Qty, t)
		}
	}
	slices.SortStableFunc(sorted, func(a, b RestockTime) int {
		return a.minuteOfDay() - b.minuteOfDay()
	})
	return RestockSchedule{times: sorted}, nil
}

// MustRestockSchedule is NewRestockSchedule for static tables; it panics on error.
func MustRestockSchedule(times ...RestockTime) RestockSchedule {
	s, err := NewRestockSchedule(times)
	if err != nil {
		panic(err)
	}
	return s
}

// Times returns a copy of the triggers in time-of-day order.
func (s RestockSchedule) Times() []RestockTime {
	return slices.Clone(s.times)
}

// Len returns the number of triggers.
func (s RestockSchedule) Len() int {
	return len(s.times)
}

// Match returns the trigger whose hour and minute equal now's, if any.
// Matching is exact: a tick that does not land on the minute misses it.
func (s RestockSchedule) Match(now time.Time) (RestockTime, bool) {
	for _, t := range s.times {
		if now.Hour() == t.Hour && now.Minute() == t.Minute {
			return t, true
		}
	}
	return RestockTime{}, false
}

// Next returns the earliest trigger strictly after now, wrapping to the
// first trigger of the next day. ok is false for an empty schedule.
func (s RestockSchedule) Next(now time.Time) (at time.Time, t RestockTime, ok bool) {
	if len(s.times) == 0 {
		return time.Time{}, RestockTime{}, false
	}
	y, m, d := now.Date()
	for _, rt := range s.times {
		candidate := time.Date(y, m, d, rt.Hour, rt.Minute, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate, rt, true
		}
	}
	first := s.times[0]
	return time.Date(y, m, d+1, first.Hour, first.Minute, 0, 0, now.Location()), first, true
}
