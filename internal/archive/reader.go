package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrCorruptArchive is returned when the archive container cannot be
// opened. This aborts the whole operation; no partial results are
// produced.
var ErrCorruptArchive = errors.New("archive is corrupt or not a zip file")

// DefaultEntryPattern matches the payroll report naming convention of
// the booking platform's export archives.
const DefaultEntryPattern = "momence-teachers-payroll-report-aggregate-combined"

// ProgressFunc receives the percentage (0-100) of archive entries
// processed so far. It is invoked once per entry, matched or skipped,
// and is monotonically non-decreasing, reaching 100 on the last entry.
type ProgressFunc func(percent int)

// Reader extracts payroll report entries from a zip archive.
type Reader struct {
	pattern string
	logger  *zap.Logger
}

// NewReader creates a reader that extracts entries whose name contains
// the given pattern. An empty pattern falls back to DefaultEntryPattern.
func NewReader(pattern string, logger *zap.Logger) *Reader {
	if pattern == "" {
		pattern = DefaultEntryPattern
	}
	return &Reader{
		pattern: pattern,
		logger:  logger,
	}
}

// ExtractReports returns the text content of every matching entry in
// the archive. Entries are visited in lexicographic name order so the
// concatenation order, and therefore downstream aggregation, is
// deterministic for a given archive. An archive with no matching
// entries yields an empty slice and no error.
func (r *Reader) ExtractReports(ctx context.Context, data []byte, onProgress ProgressFunc) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	entries := make([]*zip.File, len(zr.File))
	copy(entries, zr.File)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	total := len(entries)
	if total == 0 {
		if onProgress != nil {
			onProgress(100)
		}
		return nil, nil
	}

	var contents []string
	for i, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if strings.Contains(entry.Name, r.pattern) {
			text, err := readEntry(entry)
			if err != nil {
				r.logger.Warn("Failed to read archive entry",
					zap.String("entry", entry.Name),
					zap.Error(err))
			} else {
				contents = append(contents, text)
				r.logger.Debug("Extracted report entry",
					zap.String("entry", entry.Name),
					zap.Int("bytes", len(text)))
			}
		}

		if onProgress != nil {
			onProgress(percent(i+1, total))
		}
	}

	r.logger.Info("Archive extraction completed",
		zap.Int("total_entries", total),
		zap.Int("matched_entries", len(contents)),
		zap.String("pattern", r.pattern))

	return contents, nil
}

// readEntry decompresses a single archive entry into a string.
func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read entry: %w", err)
	}

	return string(data), nil
}

func percent(processed, total int) int {
	return int(math.Round(float64(processed) / float64(total) * 100))
}
