package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for due dates
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day or location.
// Due dates compare as days, so "today" never depends on the hour.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in the local timezone
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for fixtures and tests
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// AddDays returns the date n days later (or earlier for negative n)
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDueDate understands the shorthand accepted by quick add and the task form:
// today, tomorrow, weekday names, nextweek, ISO dates and a few US layouts.
func ParseDueDate(s string, today Date) (Date, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return today, true
	case "tomorrow", "tom":
		return today.AddDays(1), true
	case "monday", "mon":
		return nextWeekday(today, time.Monday), true
	case "tuesday", "tue":
		return nextWeekday(today, time.Tuesday), true
	case "wednesday", "wed":
		return nextWeekday(today, time.Wednesday), true
	case "thursday", "thu":
		return nextWeekday(today, time.Thursday), true
	case "friday", "fri":
		return nextWeekday(today, time.Friday), true
	case "saturday", "sat":
		return nextWeekday(today, time.Saturday), true
	case "sunday", "sun":
		return nextWeekday(today, time.Sunday), true
	case "nextweek":
		return today.AddDays(7), true
	}

	formats := []string{
		DateLayout,
		"01/02/2006",
		"01-02-2006",
		"Jan 2, 2006",
		"Jan 2",
	}
	for _, format := range formats {
		t, err := time.Parse(format, strings.TrimSpace(s))
		if err != nil {
			continue
		}
		// No year in the layout, assume the current one
		if t.Year() == 0 {
			return Date{Year: today.Year, Month: t.Month(), Day: t.Day()}, true
		}
		return DateOf(t), true
	}
	return Date{}, false
}

func nextWeekday(today Date, day time.Weekday) Date {
	daysUntil := int(day - today.Time().Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDays(daysUntil)
}
