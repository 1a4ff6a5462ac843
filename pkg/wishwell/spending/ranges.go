// Package spending reports what a user has spent on gifts they purchased for
// others, and exports their claimed gifts.
package spending

import (
	"fmt"
	"time"
)

// Range is a reporting period ending at or containing now
type Range string

const (
	Week     Range = "week"
	Month    Range = "month"
	Year     Range = "year"
	Lifetime Range = "lifetime"
)

// ParseRange validates r. An empty value selects Lifetime.
func ParseRange(r string) (Range, error) {
	switch Range(r) {
	case "":
		return Lifetime, nil
	case Week, Month, Year, Lifetime:
		return Range(r), nil
	}
	return "", fmt.Errorf("unknown range %q", r)
}

// Bounds returns the half-open interval [start, end) covered by r at now.
// Weeks start on Sunday; months and years are calendar periods in now's
// location.
func Bounds(r Range, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()

	switch r {
	case Week:
		start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 7)
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	}
	return time.Unix(0, 0).In(loc), now
}
