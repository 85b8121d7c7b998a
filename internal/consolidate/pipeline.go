package consolidate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fitlytics/studio-insights/internal/archive"
	"github.com/fitlytics/studio-insights/internal/normalize"
	"github.com/fitlytics/studio-insights/internal/payroll"
)

// Pipeline consolidates a payroll report archive into per-slot
// aggregate records: extraction, row parsing, class name normalization,
// temporal decomposition and the aggregation fold, in one linear pass.
type Pipeline struct {
	reader     *archive.Reader
	normalizer *normalize.Normalizer
	config     *Config
	logger     *zap.Logger
	stats      *ProcessingStats
	mu         sync.RWMutex
}

// NewPipeline creates a consolidation pipeline.
func NewPipeline(config *Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		reader:     archive.NewReader(config.EntryPattern, logger),
		normalizer: normalize.New(logger),
		config:     config,
		logger:     logger,
		stats: &ProcessingStats{
			StartTime: time.Now(),
		},
	}
}

// ProcessArchive consolidates one archive. Archive-level failures abort
// immediately with no partial results; row-level failures (unparseable
// timestamps, missing class names) are absorbed, recorded as
// diagnostics, and never abort the batch. Progress is reported per
// archive entry through onProgress.
func (p *Pipeline) ProcessArchive(ctx context.Context, data []byte, onProgress archive.ProgressFunc) (*ProcessingResult, error) {
	if p.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.ProcessTimeout)
		defer cancel()
	}

	p.logger.Info("Starting consolidation pipeline",
		zap.Int("archive_bytes", len(data)),
		zap.String("entry_pattern", p.config.EntryPattern))

	start := time.Now()
	p.resetStats()
	result := &ProcessingResult{}

	reports, err := p.reader.ExtractReports(ctx, data, onProgress)
	if err != nil {
		return nil, fmt.Errorf("archive extraction failed: %w", err)
	}
	result.ReportFiles = len(reports)

	agg := NewAggregator()
	for _, content := range reports {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := p.consolidateReport(content, agg, result); err != nil {
			return nil, fmt.Errorf("report consolidation failed: %w", err)
		}
	}

	result.Records = agg.Finalize()
	result.DistinctKeys = len(result.Records)
	result.Duration = time.Since(start)

	p.logger.Info("Consolidation pipeline completed",
		zap.Int("report_files", result.ReportFiles),
		zap.Int64("total_rows", result.TotalRows),
		zap.Int64("rows_folded", result.RowsFolded),
		zap.Int64("rows_dropped", result.RowsDropped),
		zap.Int("distinct_slots", result.DistinctKeys),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// consolidateReport parses one report blob and folds its rows.
func (p *Pipeline) consolidateReport(content string, agg *Aggregator, result *ProcessingResult) error {
	records, err := payroll.ParseReport(content)
	if err != nil {
		return err
	}

	for i := range records {
		record := &records[i]
		result.TotalRows++
		p.addStat(func(s *ProcessingStats) { s.RowsRead++ })

		ct, err := payroll.DecomposeTimestamp(record.ClassDate)
		if err != nil {
			result.RowsDropped++
			p.addStat(func(s *ProcessingStats) { s.RowsDropped++ })
			if len(result.Diagnostics) < p.config.MaxDiagnostics {
				result.Diagnostics = append(result.Diagnostics,
					fmt.Sprintf("dropped row for %q: %v", record.ClassName, err))
			}
			p.logger.Warn("Dropping row with unparseable class date",
				zap.String("class_name", record.ClassName),
				zap.String("class_date", record.ClassDate))
			continue
		}

		before := agg.Len()
		category := p.normalizer.Normalize(record.ClassName)
		agg.Fold(record, category, ct)

		result.RowsFolded++
		p.addStat(func(s *ProcessingStats) {
			s.RowsFolded++
			if agg.Len() > before {
				s.KeysCreated++
			}
		})
	}

	return nil
}

// GetStats returns a copy of the current processing statistics.
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := *p.stats
	return &stats
}

func (p *Pipeline) addStat(update func(*ProcessingStats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update(p.stats)
}

func (p *Pipeline) resetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = &ProcessingStats{
		StartTime: time.Now(),
	}
}
