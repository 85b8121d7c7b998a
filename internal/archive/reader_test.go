package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// buildZip assembles an in-memory zip with the given entries.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

// TestExtractReports tests archive entry extraction
func TestExtractReports(t *testing.T) {
	logger := zap.NewNop()

	t.Run("PatternFilter", func(t *testing.T) {
		data := buildZip(t, map[string]string{
			"momence-teachers-payroll-report-aggregate-combined-1.csv": "report one",
			"momence-teachers-payroll-report-aggregate-combined-2.csv": "report two",
			"readme.txt": "ignore me",
		})

		reader := NewReader("", logger)
		reports, err := reader.ExtractReports(context.Background(), data, nil)
		if err != nil {
			t.Fatalf("Failed to extract reports: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("Expected 2 reports, got %d", len(reports))
		}
		// Lexicographic order by entry name.
		if reports[0] != "report one" || reports[1] != "report two" {
			t.Errorf("Reports out of order: %v", reports)
		}
	})

	t.Run("CustomPattern", func(t *testing.T) {
		data := buildZip(t, map[string]string{
			"export-a.csv": "a",
			"other.csv":    "b",
		})

		reader := NewReader("export-", logger)
		reports, err := reader.ExtractReports(context.Background(), data, nil)
		if err != nil {
			t.Fatalf("Failed to extract reports: %v", err)
		}
		if len(reports) != 1 || reports[0] != "a" {
			t.Errorf("Custom pattern filter failed: %v", reports)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		data := buildZip(t, map[string]string{
			"momence-teachers-payroll-report-aggregate-combined-1.csv": "one",
			"skipped-1.txt": "x",
			"skipped-2.txt": "y",
			"skipped-3.txt": "z",
		})

		var calls []int
		reader := NewReader("", logger)
		_, err := reader.ExtractReports(context.Background(), data, func(percent int) {
			calls = append(calls, percent)
		})
		if err != nil {
			t.Fatalf("Failed to extract reports: %v", err)
		}

		// One callback per entry, matched or skipped.
		if len(calls) != 4 {
			t.Fatalf("Expected 4 progress callbacks, got %d", len(calls))
		}
		for i := 1; i < len(calls); i++ {
			if calls[i] < calls[i-1] {
				t.Errorf("Progress not monotonic: %v", calls)
			}
		}
		if calls[len(calls)-1] != 100 {
			t.Errorf("Final progress = %d, want 100", calls[len(calls)-1])
		}
	})

	t.Run("NoMatches", func(t *testing.T) {
		data := buildZip(t, map[string]string{"unrelated.txt": "x"})

		var lastPercent int
		reader := NewReader("", logger)
		reports, err := reader.ExtractReports(context.Background(), data, func(percent int) {
			lastPercent = percent
		})
		if err != nil {
			t.Fatalf("No matches should not be an error: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("Expected no reports, got %d", len(reports))
		}
		if lastPercent != 100 {
			t.Errorf("Progress should still reach 100, got %d", lastPercent)
		}
	})

	t.Run("EmptyArchive", func(t *testing.T) {
		data := buildZip(t, nil)

		var lastPercent int
		reader := NewReader("", logger)
		reports, err := reader.ExtractReports(context.Background(), data, func(percent int) {
			lastPercent = percent
		})
		if err != nil {
			t.Fatalf("Empty archive should not be an error: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("Expected no reports, got %d", len(reports))
		}
		if lastPercent != 100 {
			t.Errorf("Progress should report 100 for empty archive, got %d", lastPercent)
		}
	})

	t.Run("CorruptArchive", func(t *testing.T) {
		reader := NewReader("", logger)
		_, err := reader.ExtractReports(context.Background(), []byte("this is not a zip"), nil)
		if !errors.Is(err, ErrCorruptArchive) {
			t.Errorf("Expected ErrCorruptArchive, got %v", err)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		data := buildZip(t, map[string]string{"a.csv": "x", "b.csv": "y"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader := NewReader("", logger)
		_, err := reader.ExtractReports(ctx, data, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}
