package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fitlytics/studio-insights/internal/archive"
	"github.com/fitlytics/studio-insights/internal/cache"
	"github.com/fitlytics/studio-insights/internal/consolidate"
	"github.com/fitlytics/studio-insights/internal/export"
	"github.com/fitlytics/studio-insights/internal/payroll"
	"github.com/fitlytics/studio-insights/internal/websocket"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":            "studio-insights",
		"version":         "0.1.0",
		"entry_pattern":   s.config.Pipeline.EntryPattern,
		"storage_enabled": s.config.Storage.Enabled,
		"cache_enabled":   s.config.Cache.Enabled,
	})
}

// handleUpload consolidates an uploaded report archive. The archive is
// sent either as the multipart field "archive" or as the raw request
// body. Processing progress is broadcast to WebSocket clients per
// archive entry.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := s.readArchive(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read archive: %v", err))
		return
	}

	archiveHash := cache.ArchiveHash(data)
	uploadID := archiveHash[:12]

	// A byte-identical archive consolidates to an identical result, so
	// a cache hit skips reprocessing entirely.
	if s.cache != nil {
		if cached, _ := s.cache.Get(r.Context(), archiveHash); cached != nil {
			s.setLatest(cached)
			s.broadcastRunComplete(uploadID, cached, true)
			s.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, err := s.pipeline.ProcessArchive(r.Context(), data, func(percent int) {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeProgress,
			Timestamp: time.Now(),
			UploadID:  uploadID,
			Data: websocket.ProgressEvent{
				UploadID: uploadID,
				Percent:  percent,
			},
		})
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, archive.ErrCorruptArchive) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, fmt.Sprintf("consolidation failed: %v", err))
		return
	}

	s.setLatest(result)

	if s.cache != nil {
		if err := s.cache.Store(r.Context(), archiveHash, result); err != nil {
			s.logger.Warn("Failed to cache result", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.SaveRecords(r.Context(), result.Records); err != nil {
			s.logger.Warn("Failed to persist records", zap.Error(err))
		}
		if err := s.store.SaveRun(r.Context(), archiveHash, result); err != nil {
			s.logger.Warn("Failed to persist run", zap.Error(err))
		}
	}

	s.broadcastRunComplete(uploadID, result, false)
	s.writeJSON(w, http.StatusOK, result)
}

// readArchive extracts the archive bytes from the request.
func (s *Server) readArchive(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.config.Server.MaxUploadBytes)

	if file, _, err := r.FormFile("archive"); err == nil {
		defer file.Close()
		return io.ReadAll(file)
	}

	return io.ReadAll(r.Body)
}

// handleRecords serves the current record set as JSON. With
// exclude_future=true, records whose period falls after the current
// month are filtered out, matching what the dashboard displays.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	result := s.getLatest()
	if result == nil {
		s.writeJSON(w, http.StatusOK, []*consolidate.SlotStats{})
		return
	}

	records := result.Records
	if r.URL.Query().Get("exclude_future") == "true" {
		records = excludeFuturePeriods(records, time.Now())
	}

	s.writeJSON(w, http.StatusOK, records)
}

// handleSummary serves the headline metrics over the current record set.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	result := s.getLatest()
	if result == nil {
		s.writeJSON(w, http.StatusOK, consolidate.BuildSummary(nil))
		return
	}

	records := result.Records
	if r.URL.Query().Get("exclude_future") == "true" {
		records = excludeFuturePeriods(records, time.Now())
	}

	s.writeJSON(w, http.StatusOK, consolidate.BuildSummary(records))
}

// handleExportCSV serves the current record set as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	result := s.getLatest()
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no consolidated data available")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="consolidated_data.csv"`)

	if err := export.WriteCSV(w, result.Records); err != nil {
		s.logger.Error("CSV export failed", zap.Error(err))
	}
}

// handleExportParquet serves the current record set as a Parquet download.
func (s *Server) handleExportParquet(w http.ResponseWriter, r *http.Request) {
	result := s.getLatest()
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no consolidated data available")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="consolidated_data.parquet"`)

	if err := export.WriteParquet(w, result.Records); err != nil {
		s.logger.Error("Parquet export failed", zap.Error(err))
	}
}

// handleStats serves pipeline, cache, store and hub statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"pipeline":  s.pipeline.GetStats(),
		"websocket": s.wsHub.GetStats(),
	}

	if s.cache != nil {
		if cs, err := s.cache.GetStats(r.Context()); err == nil {
			stats["cache"] = cs
		}
	}
	if s.store != nil {
		if ss, err := s.store.GetStats(r.Context()); err == nil {
			stats["store"] = ss
		}
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// excludeFuturePeriods drops records whose period bucket is after the
// current month. Records with a malformed period are kept.
func excludeFuturePeriods(records []*consolidate.SlotStats, now time.Time) []*consolidate.SlotStats {
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	filtered := make([]*consolidate.SlotStats, 0, len(records))
	for _, r := range records {
		periodStart, err := payroll.ParsePeriod(r.Period)
		if err != nil || !periodStart.After(cutoff) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (s *Server) broadcastRunComplete(uploadID string, result *consolidate.ProcessingResult, cacheHit bool) {
	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeRunComplete,
		Timestamp: time.Now(),
		UploadID:  uploadID,
		Data: websocket.RunCompleteEvent{
			UploadID:     uploadID,
			ReportFiles:  result.ReportFiles,
			TotalRows:    result.TotalRows,
			RowsFolded:   result.RowsFolded,
			RowsDropped:  result.RowsDropped,
			DistinctKeys: result.DistinctKeys,
			DurationMs:   result.Duration.Milliseconds(),
			CacheHit:     cacheHit,
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
