package config

import (
	"strings"
	"testing"
)

// TestGetDefaults tests the default configuration
func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("Default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Pipeline.EntryPattern == "" {
		t.Error("Default entry pattern must not be empty")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		t.Error("Default upload limit must be positive")
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

// TestValidateConfig tests configuration validation
func TestValidateConfig(t *testing.T) {
	t.Run("InvalidPort", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Server.Port = 0
		if err := validateConfig(cfg); err == nil || !strings.Contains(err.Error(), "port") {
			t.Errorf("Expected port error, got %v", err)
		}
	})

	t.Run("EmptyEntryPattern", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Pipeline.EntryPattern = ""
		if err := validateConfig(cfg); err == nil {
			t.Error("Expected entry pattern error")
		}
	})

	t.Run("InvalidUploadLimit", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Server.MaxUploadBytes = 0
		if err := validateConfig(cfg); err == nil {
			t.Error("Expected upload limit error")
		}
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Logging.Level = "verbose"
		if err := validateConfig(cfg); err == nil || !strings.Contains(err.Error(), "log level") {
			t.Errorf("Expected log level error, got %v", err)
		}
	})

	t.Run("InvalidLogFormat", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Logging.Format = "xml"
		if err := validateConfig(cfg); err == nil || !strings.Contains(err.Error(), "log format") {
			t.Errorf("Expected log format error, got %v", err)
		}
	})
}
