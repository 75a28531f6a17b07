package core

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component. The zero value is
// "no date" and serializes as JSON null, which is how optional due/paid dates
// are stored in month documents.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the calendar day for the given instant.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses "YYYY-MM-DD". An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether the date is absent.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}

// DisplayShort renders dd/mm, the form shown in transaction lists.
func (d Date) DisplayShort() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("02/01")
}

// AddMonthClamped advances the date by exactly one calendar month, preserving
// the day of month. When the day does not exist in the target month
// (Jan 31 -> Feb 31) it clamps to the last day of the target month.
func (d Date) AddMonthClamped() Date {
	year, month, day := d.Date()
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	target := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return NewDate(target.Year(), int(target.Month()), day)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", full ISO timestamps (legacy documents)
// and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	s = s[1 : len(s)-1]
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey identifies one month document, "YYYY-MM".
type MonthKey string

var ErrInvalidMonthKey = errors.New("invalid month key")

// NewMonthKey builds a key from year and month (1-12).
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyFor returns the key of the month containing t.
func MonthKeyFor(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), int(t.Month()))
}

// ParseMonthKey validates and normalizes a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return MonthKeyFor(t), nil
}

func (k MonthKey) String() string { return string(k) }

// Year returns the key's year, or 0 for a malformed key.
func (k MonthKey) Year() int {
	t, err := time.ParseInLocation("2006-01", string(k), time.UTC)
	if err != nil {
		return 0
	}
	return t.Year()
}

// Month returns the key's month (1-12), or 0 for a malformed key.
func (k MonthKey) Month() int {
	t, err := time.ParseInLocation("2006-01", string(k), time.UTC)
	if err != nil {
		return 0
	}
	return int(t.Month())
}

// Prev returns the key of the preceding calendar month.
func (k MonthKey) Prev() MonthKey {
	first := time.Date(k.Year(), time.Month(k.Month()), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return MonthKeyFor(prev)
}

// Next returns the key of the following calendar month.
func (k MonthKey) Next() MonthKey {
	first := time.Date(k.Year(), time.Month(k.Month()), 1, 0, 0, 0, 0, time.UTC)
	return MonthKeyFor(first.AddDate(0, 1, 0))
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Label returns the month name used on the month navigator, e.g. "Novembro".
func (k MonthKey) Label() string {
	m := k.Month()
	if m < 1 || m > 12 {
		return string(k)
	}
	return monthNames[m-1]
}
