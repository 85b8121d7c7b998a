// Package server exposes the consolidation pipeline over HTTP: archive
// upload, record retrieval, summary metrics, exports and a live
// progress WebSocket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fitlytics/studio-insights/internal/cache"
	"github.com/fitlytics/studio-insights/internal/config"
	"github.com/fitlytics/studio-insights/internal/consolidate"
	"github.com/fitlytics/studio-insights/internal/logger"
	"github.com/fitlytics/studio-insights/internal/store"
	"github.com/fitlytics/studio-insights/internal/web"
	"github.com/fitlytics/studio-insights/internal/websocket"
)

// Server represents the insights HTTP server
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	pipeline *consolidate.Pipeline
	store    *store.Store       // nil when persistence is disabled
	cache    *cache.ResultCache // nil when caching is disabled
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub
	limiter  *clientLimiter
	done     chan struct{}

	// latest holds the most recent consolidation result, served by the
	// records, summary and export endpoints.
	mu        sync.RWMutex
	latest    *consolidate.ProcessingResult
	lastRunAt time.Time
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	pipeline := consolidate.NewPipeline(&consolidate.Config{
		EntryPattern:   cfg.Pipeline.EntryPattern,
		ProcessTimeout: cfg.Pipeline.ProcessTimeout,
		MaxDiagnostics: cfg.Pipeline.MaxDiagnostics,
	}, log.WithComponent("pipeline").Logger)

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastProgress:    cfg.WebSocket.Events.BroadcastProgress,
		BroadcastRuns:        cfg.WebSocket.Events.BroadcastRuns,
		BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
	}, log.WithComponent("websocket").Logger)

	server := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		pipeline: pipeline,
		router:   mux.NewRouter(),
		wsHub:    wsHub,
		limiter:  newClientLimiter(cfg.Server.UploadRate),
		done:     make(chan struct{}),
	}

	if cfg.Storage.Enabled {
		st, err := store.NewStore(&store.Config{
			DatabaseURL:     cfg.Storage.DatabaseURL,
			MaxOpenConns:    cfg.Storage.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Storage.ConnMaxIdleTime,
		}, log.WithComponent("store").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		server.store = st
	}

	if cfg.Cache.Enabled {
		rc, err := cache.NewResultCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		server.cache = rc
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Info endpoint
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// Dashboard endpoint - static HTML shell
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	// WebSocket endpoint for live progress
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	// API endpoints
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/upload", s.rateLimitMiddleware(s.handleUpload)).Methods("POST")
	api.HandleFunc("/records", s.handleRecords).Methods("GET")
	api.HandleFunc("/summary", s.handleSummary).Methods("GET")
	api.HandleFunc("/export/csv", s.handleExportCSV).Methods("GET")
	api.HandleFunc("/export/parquet", s.handleExportParquet).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting studio-insights server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("storage_enabled", s.config.Storage.Enabled),
		zap.Bool("cache_enabled", s.config.Cache.Enabled),
	)

	// Start WebSocket hub in a separate goroutine
	go s.wsHub.Run()

	// Periodic housekeeping: system status broadcast and limiter cleanup
	go s.housekeeping()

	return s.server.ListenAndServe()
}

// housekeeping broadcasts periodic system status events and prunes idle
// rate-limiter buckets until the server stops.
func (s *Server) housekeeping() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.limiter.Cleanup(10 * time.Minute)

			status := websocket.SystemStatusEvent{
				Status:            "healthy",
				ActiveConnections: s.wsHub.GetStats().ActiveConnections,
			}
			s.mu.RLock()
			if !s.lastRunAt.IsZero() {
				status.LastRunAt = s.lastRunAt.Format(time.RFC3339)
			}
			s.mu.RUnlock()
			s.wsHub.BroadcastEvent(websocket.Event{
				Type:      websocket.EventTypeSystemStatus,
				Timestamp: time.Now(),
				Data:      status,
			})
		}
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping studio-insights server")

	close(s.done)

	if s.store != nil {
		defer s.store.Close()
	}
	if s.cache != nil {
		defer s.cache.Close()
	}

	return s.server.Shutdown(ctx)
}

// handleWebSocket handles WebSocket connections for the dashboard
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}

// GetWebSocketHub returns the WebSocket hub for broadcasting events
func (s *Server) GetWebSocketHub() *websocket.Hub {
	return s.wsHub
}

// setLatest replaces the served result set.
func (s *Server) setLatest(result *consolidate.ProcessingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
	s.lastRunAt = time.Now()
}

// getLatest returns the current result set, or nil before any upload.
func (s *Server) getLatest() *consolidate.ProcessingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
