package server

import (
	"testing"
	"time"

	"github.com/fitlytics/studio-insights/internal/config"
)

// TestClientLimiter tests per-client upload rate limiting
func TestClientLimiter(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		l := newClientLimiter(config.RateConfig{Enabled: false})
		for i := 0; i < 100; i++ {
			if !l.Allow("10.0.0.1") {
				t.Fatal("Disabled limiter should always allow")
			}
		}
	})

	t.Run("BurstThenLimit", func(t *testing.T) {
		l := newClientLimiter(config.RateConfig{Enabled: true, RequestsPerMin: 1, Burst: 2})

		if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
			t.Fatal("Requests within burst should be allowed")
		}
		if l.Allow("10.0.0.1") {
			t.Error("Request past the burst should be denied")
		}
	})

	t.Run("PerClientBuckets", func(t *testing.T) {
		l := newClientLimiter(config.RateConfig{Enabled: true, RequestsPerMin: 1, Burst: 1})

		if !l.Allow("10.0.0.1") {
			t.Fatal("First request should be allowed")
		}
		if l.Allow("10.0.0.1") {
			t.Error("Second request from same client should be denied")
		}
		if !l.Allow("10.0.0.2") {
			t.Error("Another client should have its own bucket")
		}
	})

	t.Run("MinimumBurst", func(t *testing.T) {
		l := newClientLimiter(config.RateConfig{Enabled: true, RequestsPerMin: 1})
		if !l.Allow("10.0.0.1") {
			t.Error("Zero-burst config should still allow one request")
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		l := newClientLimiter(config.RateConfig{Enabled: true, RequestsPerMin: 60, Burst: 1})
		l.Allow("10.0.0.1")

		time.Sleep(time.Millisecond)
		l.Cleanup(time.Nanosecond)

		l.mu.Lock()
		n := len(l.clients)
		l.mu.Unlock()
		if n != 0 {
			t.Errorf("Expected buckets to be cleaned up, %d remain", n)
		}
	})
}
