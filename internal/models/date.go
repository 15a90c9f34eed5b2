package models

import (
	"fmt"
	"time"
)

const calendarLayout = "2006-01-02"

// CalendarDate is a date without a time component. Sprint boundaries are
// whole days; comparing wall-clock instants across time zones would make
// "ends today" ambiguous.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate parses the YYYY-MM-DD form.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(calendarLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d CalendarDate) String() string {
	return d.Time().Format(calendarLayout)
}

// Time returns midnight UTC of the date. Used only for arithmetic; the zone
// never leaks into comparisons between CalendarDates.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// AddWeeks returns the date n weeks later.
func (d CalendarDate) AddWeeks(n int) CalendarDate {
	return d.AddDays(7 * n)
}

// DaysUntil returns the number of whole days from d to other; negative when
// other is earlier.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

func (d CalendarDate) Equal(other CalendarDate) bool {
	return d == other
}

func (d CalendarDate) After(other CalendarDate) bool {
	return d.Time().After(other.Time())
}

func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time().Before(other.Time())
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: want a quoted YYYY-MM-DD string", s)
	}
	parsed, err := ParseCalendarDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
