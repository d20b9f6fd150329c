package timeutil

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60) // UTC+5:30
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts any time to IST
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// FormatIST formats a time in IST using the given layout
func FormatIST(t time.Time, layout string) string {
	return t.In(IST).Format(layout)
}

// Common layouts for IST formatting
const (
	DateLayout     = "2006-01-02"
	PeriodLayout   = "2006-01"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)

// ParsePeriod parses a YYYY-MM billing period into the first instant of that
// month in IST.
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.ParseInLocation(PeriodLayout, period, IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid billing period %q (want YYYY-MM): %w", period, err)
	}
	return t, nil
}

// PeriodOf returns the YYYY-MM billing period a time falls in.
func PeriodOf(t time.Time) string {
	return t.In(IST).Format(PeriodLayout)
}

// DueDate computes the due date for a billing period: the first day of the
// following month plus dueDays.
func DueDate(period string, dueDays int) (time.Time, error) {
	start, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 1, 0).AddDate(0, 0, dueDays), nil
}

// SameMonth reports whether two times fall in the same calendar month in IST.
func SameMonth(a, b time.Time) bool {
	a, b = a.In(IST), b.In(IST)
	return a.Year() == b.Year() && a.Month() == b.Month()
}
