// Package dates provides calendar-day arithmetic with no time-of-day or
// timezone ambiguity. A Day is identified purely by (year, month, day), so
// comparing or advancing one can never shift across a day boundary the way
// offset-carrying timestamps can.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for calendar days.
const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("dates: invalid date")

// Day is a calendar day. The zero value is "no day".
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func New(year int, month time.Month, day int) Day {
	return Day{Year: year, Month: month, Day: day}
}

// FromTime takes the calendar date of t in t's own location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Parse reads a calendar day from an ISO date (2006-01-02) or an RFC 3339
// timestamp, in which case the date is taken exactly as written, in the
// timestamp's own offset. It never substitutes the current day for bad input.
func Parse(value string) (Day, error) {
	if value == "" {
		return Day{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if t, err := time.Parse(Layout, value); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return FromTime(t), nil
	}
	return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Day) String() string {
	return d.Time().Format(Layout)
}

// Time pins the day to midnight UTC. Only used internally for arithmetic;
// callers comparing days must use Compare, not time.Time ordering.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b.
func Compare(a, b Day) int {
	at, bt := a.Time(), b.Time()
	switch {
	case at.Before(bt):
		return -1
	case at.After(bt):
		return 1
	default:
		return 0
	}
}

func (d Day) Before(o Day) bool { return Compare(d, o) < 0 }
func (d Day) After(o Day) bool  { return Compare(d, o) > 0 }
func (d Day) Equal(o Day) bool  { return Compare(d, o) == 0 }

func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths advances by whole calendar months. The day of month is preserved
// when the target month has it, otherwise clamped to the target month's last
// day (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate which rolls over.
func (d Day) AddMonths(n int) Day {
	months := int(d.Month) - 1 + n
	year := d.Year + floorDiv(months, 12)
	month := time.Month(mod(months, 12) + 1)
	day := d.Day
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Day{Year: year, Month: month, Day: day}
}

// AddYears clamps Feb 29 to Feb 28 on non-leap targets.
func (d Day) AddYears(n int) Day {
	year := d.Year + n
	day := d.Day
	if last := DaysIn(year, d.Month); day > last {
		day = last
	}
	return Day{Year: year, Month: d.Month, Day: day}
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// StartOfWeek returns the Sunday on or before d. Sunday is the fixed week
// start for every due-state boundary in this module.
func StartOfWeek(d Day) Day {
	return d.AddDays(-int(d.Weekday()))
}

// EndOfWeek returns the Saturday on or after d.
func EndOfWeek(d Day) Day {
	return StartOfWeek(d).AddDays(6)
}

func StartOfMonth(d Day) Day {
	return Day{Year: d.Year, Month: d.Month, Day: 1}
}

func EndOfMonth(d Day) Day {
	return Day{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b Day) bool {
	return a.Year == b.Year && a.Month == b.Month
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
