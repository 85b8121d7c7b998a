package payroll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a class timestamp cannot be
// parsed. The caller drops the row and keeps processing.
var ErrInvalidTimestamp = errors.New("invalid class timestamp")

// classDateLayouts are the timestamp formats seen in report exports,
// tried in order.
var classDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 03:04 PM",
	"2006-01-02",
}

// ClassTime holds the three independent projections of a class
// timestamp used for slot identity and period bucketing.
type ClassTime struct {
	// DayOfWeek is the full English weekday name ("Wednesday").
	DayOfWeek string
	// TimeOfDay is the display time ("06:30 PM").
	TimeOfDay string
	// Period is the year-month bucket ("Mar-24").
	Period string
	// Date is the parsed timestamp.
	Date time.Time
}

// DecomposeTimestamp derives the weekday, display time and period from
// a raw class timestamp.
func DecomposeTimestamp(raw string) (ClassTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClassTime{}, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}

	var date time.Time
	var err error
	for _, layout := range classDateLayouts {
		date, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ClassTime{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	return ClassTime{
		DayOfWeek: date.Weekday().String(),
		TimeOfDay: date.Format("03:04 PM"),
		Period:    date.Format("Jan-06"),
		Date:      date,
	}, nil
}

// ParsePeriod converts a period bucket ("Mar-24") back to the first
// instant of that month. The year is reconstructed as 2000 plus the
// two-digit suffix, which mismaps dates outside 2000-2099; downstream
// future-period filtering depends on this exact arithmetic, so it is
// carried as documented behavior rather than corrected.
func ParsePeriod(period string) (time.Time, error) {
	parts := strings.SplitN(period, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("malformed period %q", period)
	}

	month, err := time.Parse("Jan", parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed period month %q: %w", parts[0], err)
	}

	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed period year %q: %w", parts[1], err)
	}

	return time.Date(2000+yy, month.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}
