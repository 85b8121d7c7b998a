// Package store persists consolidated slot records in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fitlytics/studio-insights/internal/consolidate"
)

// Store handles slot record persistence with PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

const schema = `
CREATE TABLE IF NOT EXISTS slot_stats (
	slot_id            TEXT PRIMARY KEY,
	category           TEXT NOT NULL,
	day_of_week        TEXT NOT NULL,
	class_time         TEXT NOT NULL,
	location           TEXT NOT NULL DEFAULT '',
	teacher_name       TEXT NOT NULL DEFAULT '',
	period             TEXT NOT NULL DEFAULT '',
	class_date         TEXT NOT NULL DEFAULT '',
	total_occurrences  INTEGER NOT NULL,
	total_cancelled    INTEGER NOT NULL,
	total_checkins     INTEGER NOT NULL,
	total_empty        INTEGER NOT NULL,
	total_non_empty    INTEGER NOT NULL,
	total_non_paid     INTEGER NOT NULL,
	total_revenue      DOUBLE PRECISION NOT NULL,
	total_hours        DOUBLE PRECISION NOT NULL,
	avg_incl_empty     TEXT NOT NULL,
	avg_excl_empty     TEXT NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS consolidation_runs (
	id            BIGSERIAL PRIMARY KEY,
	archive_hash  TEXT NOT NULL,
	report_files  INTEGER NOT NULL,
	total_rows    BIGINT NOT NULL,
	rows_folded   BIGINT NOT NULL,
	rows_dropped  BIGINT NOT NULL,
	distinct_keys INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// NewStore creates a new store instance and ensures the schema exists.
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Slot store initialized successfully",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return store, nil
}

// initialize checks the connection and creates tables if missing.
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRecords upserts consolidated records, keyed by slot ID. Existing
// rows are replaced: each consolidation run produces the complete
// aggregate for a slot, so totals are overwritten rather than summed.
func (s *Store) SaveRecords(ctx context.Context, records []*consolidate.SlotStats) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()

	const cols = 18
	valueStrings := make([]string, 0, len(records))
	valueArgs := make([]interface{}, 0, len(records)*cols)

	for i, r := range records {
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs,
			r.SlotID, r.Category, r.DayOfWeek, r.ClassTime,
			r.Location, r.TeacherName, r.Period, r.Date,
			r.TotalOccurrences, r.TotalCancelled, r.TotalCheckins,
			r.TotalEmpty, r.TotalNonEmpty, r.TotalNonPaid,
			r.TotalRevenue, r.TotalHours,
			r.AvgIncludingEmpty, r.AvgExcludingEmpty,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO slot_stats (
			slot_id, category, day_of_week, class_time,
			location, teacher_name, period, class_date,
			total_occurrences, total_cancelled, total_checkins,
			total_empty, total_non_empty, total_non_paid,
			total_revenue, total_hours,
			avg_incl_empty, avg_excl_empty
		)
		VALUES %s
		ON CONFLICT (slot_id) DO UPDATE SET
			location = EXCLUDED.location,
			teacher_name = EXCLUDED.teacher_name,
			period = EXCLUDED.period,
			class_date = EXCLUDED.class_date,
			total_occurrences = EXCLUDED.total_occurrences,
			total_cancelled = EXCLUDED.total_cancelled,
			total_checkins = EXCLUDED.total_checkins,
			total_empty = EXCLUDED.total_empty,
			total_non_empty = EXCLUDED.total_non_empty,
			total_non_paid = EXCLUDED.total_non_paid,
			total_revenue = EXCLUDED.total_revenue,
			total_hours = EXCLUDED.total_hours,
			avg_incl_empty = EXCLUDED.avg_incl_empty,
			avg_excl_empty = EXCLUDED.avg_excl_empty,
			updated_at = now()`,
		strings.Join(valueStrings, ","))

	if _, err := s.db.ExecContext(ctx, query, valueArgs...); err != nil {
		s.logger.Error("Batch upsert failed", zap.Error(err))
		return fmt.Errorf("batch upsert failed: %w", err)
	}

	s.logger.Info("Slot records saved",
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// SaveRun records a consolidation run for history.
func (s *Store) SaveRun(ctx context.Context, archiveHash string, result *consolidate.ProcessingResult) error {
	query := `
		INSERT INTO consolidation_runs (
			archive_hash, report_files, total_rows, rows_folded,
			rows_dropped, distinct_keys, duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		archiveHash, result.ReportFiles, result.TotalRows, result.RowsFolded,
		result.RowsDropped, result.DistinctKeys, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// ListRecords returns all stored slot records.
func (s *Store) ListRecords(ctx context.Context) ([]*consolidate.SlotStats, error) {
	query := `
		SELECT slot_id, category, day_of_week, class_time,
			location, teacher_name, period, class_date,
			total_occurrences, total_cancelled, total_checkins,
			total_empty, total_non_empty, total_non_paid,
			total_revenue, total_hours,
			avg_incl_empty, avg_excl_empty
		FROM slot_stats
		ORDER BY slot_id`

	var records []*consolidate.SlotStats
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}

// Stats holds database-level statistics.
type Stats struct {
	TotalSlots int64 `db:"total_slots" json:"total_slots"`
	TotalRuns  int64 `db:"total_runs" json:"total_runs"`
}

// GetStats returns database statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.GetContext(ctx, &stats.TotalSlots, "SELECT COUNT(*) FROM slot_stats"); err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.TotalRuns, "SELECT COUNT(*) FROM consolidation_runs"); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks sensitive information in database URL for logging
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
