// Package export serializes consolidated slot records to flat tabular
// formats: one row per record, one column per output field.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fitlytics/studio-insights/internal/consolidate"
)

// Columns is the CSV header, in the order consumers expect.
var Columns = []string{
	"Unique ID",
	"Cleaned Class",
	"Day of the Week",
	"Class Time",
	"Location",
	"Trainer Name",
	"Period",
	"Total Occurrences",
	"Total Cancelled",
	"Total Checkins",
	"Total Empty",
	"Total Non-Empty",
	"Class Average (Including Empty)",
	"Class Average (Excluding Empty)",
	"Total Revenue",
	"Total Time",
	"Total Non-Paid",
	"Date",
}

// WriteCSV writes the records as CSV, header first.
func WriteCSV(w io.Writer, records []*consolidate.SlotStats) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.SlotID,
			r.Category,
			r.DayOfWeek,
			r.ClassTime,
			r.Location,
			r.TeacherName,
			r.Period,
			strconv.Itoa(r.TotalOccurrences),
			strconv.Itoa(r.TotalCancelled),
			strconv.Itoa(r.TotalCheckins),
			strconv.Itoa(r.TotalEmpty),
			strconv.Itoa(r.TotalNonEmpty),
			r.AvgIncludingEmpty,
			r.AvgExcludingEmpty,
			strconv.FormatFloat(r.TotalRevenue, 'f', -1, 64),
			strconv.FormatFloat(r.TotalHours, 'f', 2, 64),
			strconv.Itoa(r.TotalNonPaid),
			r.Date,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
