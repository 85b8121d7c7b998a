package payroll

import (
	"errors"
	"testing"
	"time"
)

// TestDecomposeTimestamp tests the temporal projections of a class date
func TestDecomposeTimestamp(t *testing.T) {
	t.Run("EveningClass", func(t *testing.T) {
		ct, err := DecomposeTimestamp("2024-03-06 18:30:00")
		if err != nil {
			t.Fatalf("Failed to decompose timestamp: %v", err)
		}
		if ct.DayOfWeek != "Wednesday" {
			t.Errorf("DayOfWeek = %q, want Wednesday", ct.DayOfWeek)
		}
		if ct.TimeOfDay != "06:30 PM" {
			t.Errorf("TimeOfDay = %q, want 06:30 PM", ct.TimeOfDay)
		}
		if ct.Period != "Mar-24" {
			t.Errorf("Period = %q, want Mar-24", ct.Period)
		}
	})

	t.Run("MorningClass", func(t *testing.T) {
		ct, err := DecomposeTimestamp("2024-03-04 07:00:00")
		if err != nil {
			t.Fatalf("Failed to decompose timestamp: %v", err)
		}
		if ct.DayOfWeek != "Monday" {
			t.Errorf("DayOfWeek = %q, want Monday", ct.DayOfWeek)
		}
		if ct.TimeOfDay != "07:00 AM" {
			t.Errorf("TimeOfDay = %q, want 07:00 AM", ct.TimeOfDay)
		}
	})

	t.Run("AlternateLayouts", func(t *testing.T) {
		for _, raw := range []string{
			"2024-03-06T18:30:00Z",
			"2024-03-06T18:30:00",
			"2024-03-06 18:30",
			"03/06/2024 18:30:00",
			"03/06/2024 06:30 PM",
		} {
			ct, err := DecomposeTimestamp(raw)
			if err != nil {
				t.Errorf("Failed to decompose %q: %v", raw, err)
				continue
			}
			if ct.TimeOfDay != "06:30 PM" {
				t.Errorf("Decompose(%q).TimeOfDay = %q, want 06:30 PM", raw, ct.TimeOfDay)
			}
		}
	})

	t.Run("DateOnly", func(t *testing.T) {
		ct, err := DecomposeTimestamp("2024-03-06")
		if err != nil {
			t.Fatalf("Failed to decompose date-only timestamp: %v", err)
		}
		if ct.TimeOfDay != "12:00 AM" {
			t.Errorf("TimeOfDay = %q, want 12:00 AM", ct.TimeOfDay)
		}
	})

	t.Run("InvalidTimestamp", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "not a date", "2024-13-45 99:99:99"} {
			_, err := DecomposeTimestamp(raw)
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("Decompose(%q) error = %v, want ErrInvalidTimestamp", raw, err)
			}
		}
	})
}

// TestParsePeriod tests period bucket reconstruction
func TestParsePeriod(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		got, err := ParsePeriod("Mar-24")
		if err != nil {
			t.Fatalf("Failed to parse period: %v", err)
		}
		want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ParsePeriod(Mar-24) = %v, want %v", got, want)
		}
	})

	t.Run("TwoDigitYearWindow", func(t *testing.T) {
		// The year is always 2000 plus the suffix, so "99" maps to 2099.
		got, err := ParsePeriod("Jan-99")
		if err != nil {
			t.Fatalf("Failed to parse period: %v", err)
		}
		if got.Year() != 2099 {
			t.Errorf("ParsePeriod(Jan-99).Year() = %d, want 2099", got.Year())
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, period := range []string{"", "March", "Foo-24", "Mar-xx"} {
			if _, err := ParsePeriod(period); err == nil {
				t.Errorf("ParsePeriod(%q) should fail", period)
			}
		}
	})
}
