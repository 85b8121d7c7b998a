package consolidate

import (
	"testing"
	"time"

	"github.com/fitlytics/studio-insights/internal/payroll"
)

func classTime(t *testing.T, raw string) payroll.ClassTime {
	t.Helper()
	ct, err := payroll.DecomposeTimestamp(raw)
	if err != nil {
		t.Fatalf("Failed to decompose %q: %v", raw, err)
	}
	return ct
}

// TestAggregatorFold tests accumulation semantics per slot key
func TestAggregatorFold(t *testing.T) {
	t.Run("SameSlotAccumulates", func(t *testing.T) {
		agg := NewAggregator()
		ct1 := classTime(t, "2024-03-06 18:30:00")
		ct2 := classTime(t, "2024-03-13 18:30:00")

		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57", CheckedIn: 6, TotalRevenue: 100, DurationHours: 1}, "Studio Barre 57", ct1)
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57", CheckedIn: 4, TotalRevenue: 50, DurationHours: 1}, "Studio Barre 57", ct2)

		if agg.Len() != 1 {
			t.Fatalf("Expected 1 slot, got %d", agg.Len())
		}

		records := agg.Finalize()
		r := records[0]
		if r.TotalOccurrences != 2 {
			t.Errorf("TotalOccurrences = %d, want 2", r.TotalOccurrences)
		}
		if r.TotalCheckins != 10 {
			t.Errorf("TotalCheckins = %d, want 10", r.TotalCheckins)
		}
		if r.TotalRevenue != 150 {
			t.Errorf("TotalRevenue = %f, want 150", r.TotalRevenue)
		}
		if r.TotalHours != 2 {
			t.Errorf("TotalHours = %f, want 2", r.TotalHours)
		}
	})

	t.Run("DifferentProjectionsDifferentSlots", func(t *testing.T) {
		agg := NewAggregator()

		// Same category, different weekday and time projections.
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", classTime(t, "2024-03-06 18:30:00"))
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", classTime(t, "2024-03-07 18:30:00"))
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", classTime(t, "2024-03-06 07:00:00"))

		if agg.Len() != 3 {
			t.Errorf("Expected 3 slots, got %d", agg.Len())
		}
	})

	t.Run("FirstRowWinsIdentity", func(t *testing.T) {
		agg := NewAggregator()

		agg.Fold(&payroll.RawRecord{
			ClassName: "Barre 57", Location: "Main Studio",
			TeacherFirstName: "Asha", TeacherLastName: "Rao",
		}, "Studio Barre 57", classTime(t, "2024-03-06 18:30:00"))
		agg.Fold(&payroll.RawRecord{
			ClassName: "Barre 57", Location: "Annex",
			TeacherFirstName: "Vik", TeacherLastName: "Shah",
		}, "Studio Barre 57", classTime(t, "2024-04-03 18:30:00"))

		r := agg.Finalize()[0]
		if r.Location != "Main Studio" {
			t.Errorf("Location = %q, want first-seen Main Studio", r.Location)
		}
		if r.TeacherName != "Asha Rao" {
			t.Errorf("TeacherName = %q, want first-seen Asha Rao", r.TeacherName)
		}
		if r.Period != "Mar-24" {
			t.Errorf("Period = %q, want first-seen Mar-24", r.Period)
		}
	})

	t.Run("SlotIdentifier", func(t *testing.T) {
		agg := NewAggregator()
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", classTime(t, "2024-03-06 18:30:00"))

		r := agg.Finalize()[0]
		if r.SlotID != "Studio Barre 57-Wednesday-06:30 PM" {
			t.Errorf("SlotID = %q", r.SlotID)
		}
	})

	t.Run("InsertionOrderPreserved", func(t *testing.T) {
		agg := NewAggregator()
		agg.Fold(&payroll.RawRecord{ClassName: "Mat"}, "Studio Mat 57", classTime(t, "2024-03-06 18:30:00"))
		agg.Fold(&payroll.RawRecord{ClassName: "Barre"}, "Studio Barre 57", classTime(t, "2024-03-06 18:30:00"))
		agg.Fold(&payroll.RawRecord{ClassName: "Mat"}, "Studio Mat 57", classTime(t, "2024-03-13 18:30:00"))

		records := agg.Finalize()
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].Category != "Studio Mat 57" || records[1].Category != "Studio Barre 57" {
			t.Errorf("Records not in first-seen order: %q, %q", records[0].Category, records[1].Category)
		}
	})
}

// TestAggregatorFinalize tests the derived fields
func TestAggregatorFinalize(t *testing.T) {
	t.Run("Averages", func(t *testing.T) {
		agg := NewAggregator()
		ct := classTime(t, "2024-03-06 18:30:00")

		// Four occurrences, 10 check-ins total, one of them empty.
		for _, checkins := range []int{5, 3, 2, 0} {
			agg.Fold(&payroll.RawRecord{ClassName: "Barre 57", CheckedIn: checkins}, "Studio Barre 57", ct)
		}

		r := agg.Finalize()[0]
		if r.TotalEmpty != 1 {
			t.Errorf("TotalEmpty = %d, want 1", r.TotalEmpty)
		}
		if r.TotalNonEmpty != 3 {
			t.Errorf("TotalNonEmpty = %d, want 3", r.TotalNonEmpty)
		}
		if r.AvgIncludingEmpty != "2.5" {
			t.Errorf("AvgIncludingEmpty = %q, want 2.5", r.AvgIncludingEmpty)
		}
		if r.AvgExcludingEmpty != "3.3" {
			t.Errorf("AvgExcludingEmpty = %q, want 3.3", r.AvgExcludingEmpty)
		}
	})

	t.Run("AllEmptySentinel", func(t *testing.T) {
		agg := NewAggregator()
		ct := classTime(t, "2024-03-06 18:30:00")

		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", ct)
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", ct)

		r := agg.Finalize()[0]
		if r.AvgIncludingEmpty != "0.0" {
			t.Errorf("AvgIncludingEmpty = %q, want 0.0", r.AvgIncludingEmpty)
		}
		if r.AvgExcludingEmpty != NotApplicable {
			t.Errorf("AvgExcludingEmpty = %q, want %q", r.AvgExcludingEmpty, NotApplicable)
		}
	})

	t.Run("DateFormat", func(t *testing.T) {
		agg := NewAggregator()
		agg.Fold(&payroll.RawRecord{ClassName: "Barre 57"}, "Studio Barre 57", payroll.ClassTime{
			DayOfWeek: "Wednesday",
			TimeOfDay: "06:30 PM",
			Period:    "Mar-24",
			Date:      time.Date(2024, time.March, 6, 18, 30, 0, 0, time.UTC),
		})

		r := agg.Finalize()[0]
		if r.Date != "2024-03-06T18:30:00.000Z" {
			t.Errorf("Date = %q, want 2024-03-06T18:30:00.000Z", r.Date)
		}
	})
}
