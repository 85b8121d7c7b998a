package export

import (
	"fmt"
	"io"

	"github.com/segmentio/parquet-go"

	"github.com/fitlytics/studio-insights/internal/consolidate"
)

// parquetRow is the flat Parquet schema for one slot record.
type parquetRow struct {
	SlotID            string  `parquet:"slot_id"`
	Category          string  `parquet:"category"`
	DayOfWeek         string  `parquet:"day_of_week"`
	ClassTime         string  `parquet:"class_time"`
	Location          string  `parquet:"location"`
	TeacherName       string  `parquet:"teacher_name"`
	Period            string  `parquet:"period"`
	Date              string  `parquet:"class_date"`
	TotalOccurrences  int32   `parquet:"total_occurrences"`
	TotalCancelled    int32   `parquet:"total_cancelled"`
	TotalCheckins     int32   `parquet:"total_checkins"`
	TotalEmpty        int32   `parquet:"total_empty"`
	TotalNonEmpty     int32   `parquet:"total_non_empty"`
	TotalNonPaid      int32   `parquet:"total_non_paid"`
	TotalRevenue      float64 `parquet:"total_revenue"`
	TotalHours        float64 `parquet:"total_hours"`
	AvgIncludingEmpty string  `parquet:"avg_incl_empty"`
	AvgExcludingEmpty string  `parquet:"avg_excl_empty"`
}

// WriteParquet writes the records as a Parquet file.
func WriteParquet(w io.Writer, records []*consolidate.SlotStats) error {
	pw := parquet.NewWriter(w)

	for _, r := range records {
		row := parquetRow{
			SlotID:            r.SlotID,
			Category:          r.Category,
			DayOfWeek:         r.DayOfWeek,
			ClassTime:         r.ClassTime,
			Location:          r.Location,
			TeacherName:       r.TeacherName,
			Period:            r.Period,
			Date:              r.Date,
			TotalOccurrences:  int32(r.TotalOccurrences),
			TotalCancelled:    int32(r.TotalCancelled),
			TotalCheckins:     int32(r.TotalCheckins),
			TotalEmpty:        int32(r.TotalEmpty),
			TotalNonEmpty:     int32(r.TotalNonEmpty),
			TotalNonPaid:      int32(r.TotalNonPaid),
			TotalRevenue:      r.TotalRevenue,
			TotalHours:        r.TotalHours,
			AvgIncludingEmpty: r.AvgIncludingEmpty,
			AvgExcludingEmpty: r.AvgExcludingEmpty,
		}
		if err := pw.Write(&row); err != nil {
			return fmt.Errorf("failed to write parquet row: %w", err)
		}
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}
