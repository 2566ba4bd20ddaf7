package types

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only textual date format the module recognizes.
const DateLayout = "2006-01-02"

// DateTextLen is the length of a date rendered in DateLayout.
const DateTextLen = len(DateLayout)

// ErrInvalidDate is returned when text does not match DateLayout.
var ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range months and days the same
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateFromTime truncates t to its calendar date in t's location.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses s strictly as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	if len(s) != DateTextLen {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateFromTime(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysSinceEpoch returns the number of days between 1970-01-01 and d.
func (d Date) DaysSinceEpoch() int64 {
	return d.Time().Unix() / secondsPerDay
}

// DateFromDays is the inverse of DaysSinceEpoch.
func DateFromDays(days int64) Date {
	return DateFromTime(time.Unix(days*secondsPerDay, 0).UTC())
}

// Compare returns -1, 0 or +1 ordering d before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
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
