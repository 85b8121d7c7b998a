package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fitlytics/studio-insights/internal/config"
)

// clientLimiter applies per-client token bucket rate limiting to the
// upload endpoint.
type clientLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int

	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newClientLimiter creates a limiter from the server rate configuration.
func newClientLimiter(cfg config.RateConfig) *clientLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		enabled: cfg.Enabled,
		limit:   rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:   burst,
		clients: make(map[string]*clientBucket),
	}
}

// Allow checks if a request from the given client IP is allowed
func (l *clientLimiter) Allow(clientIP string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	bucket, ok := l.clients[clientIP]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientIP] = bucket
	}
	bucket.lastSeen = time.Now()
	l.mu.Unlock()

	return bucket.limiter.Allow()
}

// Cleanup removes buckets idle longer than maxAge to bound memory.
func (l *clientLimiter) Cleanup(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for ip, bucket := range l.clients {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}
