package consolidate

import "strconv"

// Summary holds the dashboard headline metrics computed over a record
// set. Averages are one-decimal display strings, "0" when there is no
// data.
type Summary struct {
	TotalClasses       int     `json:"total_classes"`
	TotalCheckins      int     `json:"total_checkins"`
	TotalCancelled     int     `json:"total_cancelled"`
	TotalEmptyClasses  int     `json:"total_empty_classes"`
	TotalNonPaid       int     `json:"total_non_paid"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalHours         float64 `json:"total_hours"`
	AvgAttendance      string  `json:"avg_attendance"`
	RevenuePerClass    float64 `json:"revenue_per_class"`
	UtilizationPercent string  `json:"utilization_percent"`
}

// BuildSummary computes headline metrics across the given records.
func BuildSummary(records []*SlotStats) Summary {
	var s Summary
	for _, r := range records {
		s.TotalClasses += r.TotalOccurrences
		s.TotalCheckins += r.TotalCheckins
		s.TotalCancelled += r.TotalCancelled
		s.TotalEmptyClasses += r.TotalEmpty
		s.TotalNonPaid += r.TotalNonPaid
		s.TotalRevenue += r.TotalRevenue
		s.TotalHours += r.TotalHours
	}

	if s.TotalClasses > 0 {
		s.AvgAttendance = strconv.FormatFloat(float64(s.TotalCheckins)/float64(s.TotalClasses), 'f', 1, 64)
		s.RevenuePerClass = s.TotalRevenue / float64(s.TotalClasses)
		s.UtilizationPercent = strconv.FormatFloat(
			float64(s.TotalClasses-s.TotalEmptyClasses)/float64(s.TotalClasses)*100, 'f', 1, 64)
	} else {
		s.AvgAttendance = "0"
		s.UtilizationPercent = "0"
	}

	return s
}
