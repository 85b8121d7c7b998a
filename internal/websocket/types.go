package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeProgress represents archive processing progress
	EventTypeProgress EventType = "progress"
	// EventTypeRunComplete represents a finished consolidation run
	EventTypeRunComplete EventType = "run_complete"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	UploadID  string      `json:"upload_id,omitempty"`
}

// ProgressEvent reports the percentage of archive entries processed for
// an upload in flight.
type ProgressEvent struct {
	UploadID string `json:"upload_id"`
	Percent  int    `json:"percent"`
}

// RunCompleteEvent summarizes a finished consolidation run.
type RunCompleteEvent struct {
	UploadID     string `json:"upload_id"`
	ReportFiles  int    `json:"report_files"`
	TotalRows    int64  `json:"total_rows"`
	RowsFolded   int64  `json:"rows_folded"`
	RowsDropped  int64  `json:"rows_dropped"`
	DistinctKeys int    `json:"distinct_keys"`
	DurationMs   int64  `json:"duration_ms"`
	CacheHit     bool   `json:"cache_hit"`
}

// ConnectionEvent describes a client connecting or disconnecting.
type ConnectionEvent struct {
	Action    string `json:"action"`
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message"`
}

// SystemStatusEvent carries periodic service health information.
type SystemStatusEvent struct {
	Status            string `json:"status"`
	ActiveConnections int64  `json:"active_connections"`
	LastRunAt         string `json:"last_run_at,omitempty"`
}

// Client represents one connected dashboard client.
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
	Subscription *SubscriptionRequest
}

// SubscriptionRequest narrows the event types a client receives.
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}

// ClientMessage is a message received from a client.
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
