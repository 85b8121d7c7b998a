package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/fitlytics/studio-insights/internal/cache"
	"github.com/fitlytics/studio-insights/internal/config"
	"github.com/fitlytics/studio-insights/internal/consolidate"
	"github.com/fitlytics/studio-insights/internal/export"
	"github.com/fitlytics/studio-insights/internal/logger"
	"github.com/fitlytics/studio-insights/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "configs/default.yaml", "Configuration file path")
		inputFile  = flag.String("input", "", "Input archive file (zip of payroll report exports)")
		outputFile = flag.String("output", "consolidated_data.csv", "Output file (.csv or .parquet)")
		persist    = flag.Bool("persist", false, "Persist records to PostgreSQL")
		skipCache  = flag.Bool("skip-cache", false, "Skip the Redis result cache")
		showStats  = flag.Bool("stats", false, "Show database statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input payroll-export.zip --output consolidated.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input payroll-export.zip --output consolidated.parquet --persist\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting consolidation",
		zap.String("version", "0.1.0"),
		zap.String("config", *configPath))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	if *showStats {
		if err := showDatabaseStats(ctx, cfg, log); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	if err := consolidateArchive(ctx, cfg, *inputFile, *outputFile, *persist, *skipCache, log); err != nil {
		log.Fatal("Consolidation failed", zap.Error(err))
	}

	log.Info("Consolidation completed successfully")
}

// consolidateArchive runs the pipeline over one archive file and writes
// the consolidated records to the output file.
func consolidateArchive(ctx context.Context, cfg *config.Config, inputFile, outputFile string, persist, skipCache bool, log *logger.Logger) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input archive: %w", err)
	}

	archiveHash := cache.ArchiveHash(data)

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled && !skipCache {
		resultCache, err = cache.NewResultCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize result cache: %w", err)
		}
		defer resultCache.Close()
	}

	var result *consolidate.ProcessingResult
	if resultCache != nil {
		result, _ = resultCache.Get(ctx, archiveHash)
		if result != nil {
			log.Info("Using cached result", zap.Int("records", len(result.Records)))
		}
	}

	if result == nil {
		pipeline := consolidate.NewPipeline(&consolidate.Config{
			EntryPattern:   cfg.Pipeline.EntryPattern,
			ProcessTimeout: cfg.Pipeline.ProcessTimeout,
			MaxDiagnostics: cfg.Pipeline.MaxDiagnostics,
		}, log.WithComponent("pipeline").Logger)

		result, err = pipeline.ProcessArchive(ctx, data, func(percent int) {
			log.Debug("Archive progress", zap.Int("percent", percent))
		})
		if err != nil {
			return fmt.Errorf("pipeline processing failed: %w", err)
		}

		if resultCache != nil {
			if err := resultCache.Store(ctx, archiveHash, result); err != nil {
				log.Warn("Failed to cache result", zap.Error(err))
			}
		}
	}

	log.Info("Archive consolidated",
		zap.String("file", inputFile),
		zap.Int("report_files", result.ReportFiles),
		zap.Int64("total_rows", result.TotalRows),
		zap.Int64("rows_folded", result.RowsFolded),
		zap.Int64("rows_dropped", result.RowsDropped),
		zap.Int("distinct_slots", result.DistinctKeys),
		zap.Duration("duration", result.Duration))

	if len(result.Diagnostics) > 0 {
		log.Warn("Consolidation completed with dropped rows",
			zap.Strings("diagnostics", result.Diagnostics))
	}

	if err := writeOutput(outputFile, result); err != nil {
		return err
	}

	if persist {
		if err := persistResult(ctx, cfg, archiveHash, result, log); err != nil {
			return err
		}
	}

	return nil
}

// writeOutput writes the records in the format implied by the output
// file extension.
func writeOutput(outputFile string, result *consolidate.ProcessingResult) error {
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".parquet":
		err = export.WriteParquet(out, result.Records)
	default:
		err = export.WriteCSV(out, result.Records)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// persistResult saves the records and run history to PostgreSQL.
func persistResult(ctx context.Context, cfg *config.Config, archiveHash string, result *consolidate.ProcessingResult, log *logger.Logger) error {
	st, err := store.NewStore(&store.Config{
		DatabaseURL:     cfg.Storage.DatabaseURL,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Storage.ConnMaxIdleTime,
	}, log.WithComponent("store").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if err := st.SaveRecords(ctx, result.Records); err != nil {
		return err
	}
	return st.SaveRun(ctx, archiveHash, result)
}

// showDatabaseStats displays current database statistics
func showDatabaseStats(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	st, err := store.NewStore(&store.Config{
		DatabaseURL:     cfg.Storage.DatabaseURL,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Storage.ConnMaxIdleTime,
	}, log.WithComponent("store").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	stats, err := st.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database stats: %w", err)
	}

	fmt.Printf("\n=== Studio Insights Database Statistics ===\n")
	fmt.Printf("Stored Slots:        %d\n", stats.TotalSlots)
	fmt.Printf("Consolidation Runs:  %d\n", stats.TotalRuns)

	return nil
}
