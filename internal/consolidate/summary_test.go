package consolidate

import "testing"

// TestBuildSummary tests the dashboard headline metrics
func TestBuildSummary(t *testing.T) {
	t.Run("Totals", func(t *testing.T) {
		records := []*SlotStats{
			{TotalOccurrences: 4, TotalCheckins: 10, TotalCancelled: 1, TotalEmpty: 1, TotalNonPaid: 2, TotalRevenue: 400, TotalHours: 4},
			{TotalOccurrences: 6, TotalCheckins: 20, TotalCancelled: 2, TotalEmpty: 0, TotalNonPaid: 1, TotalRevenue: 600, TotalHours: 6},
		}

		s := BuildSummary(records)
		if s.TotalClasses != 10 {
			t.Errorf("TotalClasses = %d, want 10", s.TotalClasses)
		}
		if s.TotalCheckins != 30 {
			t.Errorf("TotalCheckins = %d, want 30", s.TotalCheckins)
		}
		if s.TotalCancelled != 3 {
			t.Errorf("TotalCancelled = %d, want 3", s.TotalCancelled)
		}
		if s.AvgAttendance != "3.0" {
			t.Errorf("AvgAttendance = %q, want 3.0", s.AvgAttendance)
		}
		if s.RevenuePerClass != 100 {
			t.Errorf("RevenuePerClass = %f, want 100", s.RevenuePerClass)
		}
		if s.UtilizationPercent != "90.0" {
			t.Errorf("UtilizationPercent = %q, want 90.0", s.UtilizationPercent)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		s := BuildSummary(nil)
		if s.TotalClasses != 0 {
			t.Errorf("TotalClasses = %d, want 0", s.TotalClasses)
		}
		if s.AvgAttendance != "0" {
			t.Errorf("AvgAttendance = %q, want 0", s.AvgAttendance)
		}
		if s.UtilizationPercent != "0" {
			t.Errorf("UtilizationPercent = %q, want 0", s.UtilizationPercent)
		}
		if s.RevenuePerClass != 0 {
			t.Errorf("RevenuePerClass = %f, want 0", s.RevenuePerClass)
		}
	})
}
