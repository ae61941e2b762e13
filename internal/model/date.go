package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by ParseDate for unparsable input.
var ErrInvalidDate = errors.New("invalid date")

// acceptedLayouts are tried in order. Timestamps keep the calendar date that
// is written in the string; the time of day is dropped.
var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Date is a civil calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date
// does (e.g. March 0 is the last day of February).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO-8601 date or timestamp into a calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Within reports whether start <= d <= end.
func (d Date) Within(start, end Date) bool {
	return start.Compare(d) <= 0 && d.Compare(end) <= 0
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Month identifies a displayed month; it is the navigation cursor of the
// calendar view.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// First returns day 1 of the month.
func (m Month) First() Date {
	return NewDate(m.Year, m.Month, 1)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return NewDate(m.Year, m.Month+1, 0).Day
}

func (m Month) Next() Month {
	return MonthOf(NewDate(m.Year, m.Month+1, 1))
}

func (m Month) Prev() Month {
	return MonthOf(NewDate(m.Year, m.Month-1, 1))
}

// Label is the heading shown above the grid, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}
