package consolidate

import (
	"strconv"

	"github.com/fitlytics/studio-insights/internal/payroll"
)

// Aggregator folds normalized rows into per-slot running totals. Each
// key's accumulator has exactly one logical writer during the fold, so
// no locking is needed; output preserves first-seen insertion order for
// reproducibility.
type Aggregator struct {
	slots map[SlotKey]*SlotStats
	order []SlotKey
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		slots: make(map[SlotKey]*SlotStats),
	}
}

// Fold accumulates one row into its slot. On the first sighting of a
// key the identity fields (location, teacher, period, date) are captured
// from that row and never revised by later rows; counters accumulate
// from every row.
func (a *Aggregator) Fold(record *payroll.RawRecord, category string, ct payroll.ClassTime) {
	key := SlotKey{
		Category:  category,
		DayOfWeek: ct.DayOfWeek,
		TimeOfDay: ct.TimeOfDay,
	}

	stats, ok := a.slots[key]
	if !ok {
		stats = &SlotStats{
			SlotID:      key.ID(),
			Category:    category,
			DayOfWeek:   ct.DayOfWeek,
			ClassTime:   ct.TimeOfDay,
			Location:    record.Location,
			TeacherName: record.TeacherName(),
			Period:      ct.Period,
			firstSeen:   ct.Date,
		}
		a.slots[key] = stats
		a.order = append(a.order, key)
	}

	stats.TotalOccurrences++
	stats.TotalCancelled += record.LateCancellations
	stats.TotalCheckins += record.CheckedIn
	if record.CheckedIn == 0 {
		stats.TotalEmpty++
	}
	stats.TotalRevenue += record.TotalRevenue
	stats.TotalHours += record.DurationHours
	stats.TotalNonPaid += record.NonPaidCustomers
}

// Len returns the number of distinct keys observed so far.
func (a *Aggregator) Len() int {
	return len(a.slots)
}

// Finalize computes the derived fields for every slot and returns the
// records in insertion order. The aggregator must not be folded into
// after finalization.
func (a *Aggregator) Finalize() []*SlotStats {
	records := make([]*SlotStats, 0, len(a.order))
	for _, key := range a.order {
		stats := a.slots[key]

		stats.TotalNonEmpty = stats.TotalOccurrences - stats.TotalEmpty
		stats.AvgIncludingEmpty = formatAverage(stats.TotalCheckins, stats.TotalOccurrences)
		if stats.TotalNonEmpty > 0 {
			stats.AvgExcludingEmpty = formatAverage(stats.TotalCheckins, stats.TotalNonEmpty)
		} else {
			stats.AvgExcludingEmpty = NotApplicable
		}
		stats.Date = stats.firstSeen.UTC().Format("2006-01-02T15:04:05.000Z")

		records = append(records, stats)
	}
	return records
}

// formatAverage renders checkins/count with one decimal place.
func formatAverage(checkins, count int) string {
	return strconv.FormatFloat(float64(checkins)/float64(count), 'f', 1, 64)
}
