package payroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column headers of the payroll report export. Field lookup is
// header-driven, so column order in the source file does not matter.
const (
	ColClassName         = "Class name"
	ColClassDate         = "Class date"
	ColLocation          = "Location"
	ColTeacherFirstName  = "Teacher First Name"
	ColTeacherLastName   = "Teacher Last Name"
	ColCheckedIn         = "Checked in"
	ColLateCancellations = "Late cancellations"
	ColTotalRevenue      = "Total Revenue"
	ColTimeHours         = "Time (h)"
	ColNonPaidCustomers  = "Non Paid Customers"
)

// RawRecord is one row of a payroll report. Numeric fields that are
// absent or non-numeric in the source coerce to zero; a row without a
// class name carries no identity and is dropped by the parser.
type RawRecord struct {
	ClassName         string
	ClassDate         string
	Location          string
	TeacherFirstName  string
	TeacherLastName   string
	CheckedIn         int
	LateCancellations int
	TotalRevenue      float64
	DurationHours     float64
	NonPaidCustomers  int
}

// TeacherName returns the teacher's full display name.
func (r *RawRecord) TeacherName() string {
	return r.TeacherFirstName + " " + r.TeacherLastName
}

// ParseReport parses one report blob (header row first) into records.
// Ragged rows are tolerated: fields past the row's length read as empty
// strings. Rows missing the class name, including trailer rows and the
// trailing blank line, are skipped silently.
func ParseReport(content string) ([]RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, skip and keep reading.
			continue
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		className := field(ColClassName)
		if className == "" {
			continue
		}

		records = append(records, RawRecord{
			ClassName:         className,
			ClassDate:         field(ColClassDate),
			Location:          field(ColLocation),
			TeacherFirstName:  field(ColTeacherFirstName),
			TeacherLastName:   field(ColTeacherLastName),
			CheckedIn:         parseIntField(field(ColCheckedIn)),
			LateCancellations: parseIntField(field(ColLateCancellations)),
			TotalRevenue:      parseFloatField(field(ColTotalRevenue)),
			DurationHours:     parseFloatField(field(ColTimeHours)),
			NonPaidCustomers:  parseIntField(field(ColNonPaidCustomers)),
		})
	}

	return records, nil
}

// parseIntField converts a source field to an integer, defaulting to
// zero for absent or non-numeric values.
func parseIntField(s string) int {
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// Some exports render counts as decimals ("3.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// parseFloatField converts a source field to a float, defaulting to
// zero for absent or non-numeric values.
func parseFloatField(s string) float64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return 0
}
