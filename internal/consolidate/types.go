package consolidate

import (
	"time"
)

// NotApplicable is the sentinel for averages that have no data to
// average over (every occurrence of the slot was empty). It is distinct
// from a genuine zero average.
const NotApplicable = "N/A"

// SlotKey identifies one recurring class slot across the whole archive,
// independent of calendar date. Two rows with the same key are separate
// occurrences of the same slot and are summed, never overwritten.
type SlotKey struct {
	Category  string
	DayOfWeek string
	TimeOfDay string
}

// ID renders the key as the slot identifier exposed to consumers.
func (k SlotKey) ID() string {
	return k.Category + "-" + k.DayOfWeek + "-" + k.TimeOfDay
}

// SlotStats is the aggregate output record for one distinct slot. The
// identity fields are captured from the first row seen for the key; all
// rows contribute to the counters. Records serialize losslessly to a
// flat tabular form, which is the contract the export writers depend on.
type SlotStats struct {
	SlotID      string `json:"slot_id" db:"slot_id" parquet:"slot_id"`
	Category    string `json:"category" db:"category" parquet:"category"`
	DayOfWeek   string `json:"day_of_week" db:"day_of_week" parquet:"day_of_week"`
	ClassTime   string `json:"class_time" db:"class_time" parquet:"class_time"`
	Location    string `json:"location" db:"location" parquet:"location"`
	TeacherName string `json:"teacher_name" db:"teacher_name" parquet:"teacher_name"`
	Period      string `json:"period" db:"period" parquet:"period"`
	// Date is the ISO-8601 timestamp of the first-seen occurrence.
	Date string `json:"date" db:"class_date" parquet:"class_date"`

	TotalOccurrences int     `json:"total_occurrences" db:"total_occurrences" parquet:"total_occurrences"`
	TotalCancelled   int     `json:"total_cancelled" db:"total_cancelled" parquet:"total_cancelled"`
	TotalCheckins    int     `json:"total_checkins" db:"total_checkins" parquet:"total_checkins"`
	TotalEmpty       int     `json:"total_empty" db:"total_empty" parquet:"total_empty"`
	TotalNonEmpty    int     `json:"total_non_empty" db:"total_non_empty" parquet:"total_non_empty"`
	TotalNonPaid     int     `json:"total_non_paid" db:"total_non_paid" parquet:"total_non_paid"`
	TotalRevenue     float64 `json:"total_revenue" db:"total_revenue" parquet:"total_revenue"`
	TotalHours       float64 `json:"total_hours" db:"total_hours" parquet:"total_hours"`

	// Averages are one-decimal display strings; AvgExcludingEmpty is
	// NotApplicable when every occurrence was empty.
	AvgIncludingEmpty string `json:"avg_attendance_incl_empty" db:"avg_incl_empty" parquet:"avg_incl_empty"`
	AvgExcludingEmpty string `json:"avg_attendance_excl_empty" db:"avg_excl_empty" parquet:"avg_excl_empty"`

	firstSeen time.Time
}

// FirstSeen returns the parsed timestamp of the record's first-seen
// occurrence.
func (s *SlotStats) FirstSeen() time.Time {
	return s.firstSeen
}

// Config contains consolidation pipeline configuration
type Config struct {
	EntryPattern   string        `yaml:"entry_pattern" mapstructure:"entry_pattern"`
	ProcessTimeout time.Duration `yaml:"process_timeout" mapstructure:"process_timeout"`
	MaxDiagnostics int           `yaml:"max_diagnostics" mapstructure:"max_diagnostics"`
}

// ProcessingResult represents the outcome of consolidating one archive
type ProcessingResult struct {
	Records      []*SlotStats  `json:"records"`
	ReportFiles  int           `json:"report_files"`
	TotalRows    int64         `json:"total_rows"`
	RowsFolded   int64         `json:"rows_folded"`
	RowsDropped  int64         `json:"rows_dropped"`
	DistinctKeys int           `json:"distinct_keys"`
	Duration     time.Duration `json:"duration"`
	// Diagnostics records row-level failures that were absorbed
	// (dropped rows), capped at the configured maximum.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime   time.Time `json:"start_time"`
	RowsRead    int64     `json:"rows_read"`
	RowsFolded  int64     `json:"rows_folded"`
	RowsDropped int64     `json:"rows_dropped"`
	KeysCreated int64     `json:"keys_created"`
}
