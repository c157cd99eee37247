package timeutil

import (
	"sync/atomic"
	"time"
)

var location atomic.Pointer[time.Location]

func init() {
	location.Store(time.UTC)
}

// SetLocation switches the store timezone. Unknown names fall back to UTC+1,
// the offset of the default store location.
func SetLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.FixedZone("CET", 60*60)
	}
	location.Store(loc)
	return loc
}

// Location returns the store timezone.
func Location() *time.Location {
	return location.Load()
}

// Now returns the current time in the store timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Today returns midnight of the current store day.
func Today() time.Time {
	return StartOfDay(Now())
}

// StartOfDay returns 00:00:00 of t's day in the store timezone.
func StartOfDay(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Location())
}

// EndOfDay returns the last instant of t's day in the store timezone.
func EndOfDay(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, Location())
}

// ParseDate accepts either the API layout (2006-01-02) or the counter layout (02/01/2006).
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, Location())
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(DisplayDateLayout, value, Location())
}

// Format renders t in the store timezone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

const (
	DateLayout            = "2006-01-02"
	DateTimeLayout        = "2006-01-02 15:04:05"
	DisplayDateLayout     = "02/01/2006"
	DisplayDateTimeLayout = "02/01/2006 15:04"
)
