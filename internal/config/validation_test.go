package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment: "development",
		Port:        "8080",
		Host:        "localhost",
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        10 * time.Second,
			PlaceholderURL: "/static/images/placeholder.svg",
			MinimumScore:   0.001,
		},
		Upload: UploadConfig{
			MaxUploadSize: 10 << 20,
			AllowedTypes:  []string{"image/jpeg", "image/png"},
			MaxDimension:  2000,
			JPEGQuality:   85,
		},
		Logging: &LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Server: &ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorCount  int
	}{
		{
			name:        "valid development config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid port",
			mutate:      func(c *Config) { c.Port = "70000" },
			expectError: true,
			errorCount:  1,
		},
		{
			name:        "unknown environment",
			mutate:      func(c *Config) { c.Environment = "qa" },
			expectError: true,
			errorCount:  1,
		},
		{
			name: "relative backend URL and bad placeholder",
			mutate: func(c *Config) {
				c.Backend.BaseURL = "localhost:8000/api"
				c.Backend.PlaceholderURL = "placeholder.svg"
			},
			expectError: true,
			errorCount:  2,
		},
		{
			name:        "ftp backend",
			mutate:      func(c *Config) { c.Backend.BaseURL = "ftp://files.example.com" },
			expectError: true,
			errorCount:  1,
		},
		{
			name:        "negative pixel limit",
			mutate:      func(c *Config) { c.Upload.MaxPixels = -1 },
			expectError: true,
			errorCount:  1,
		},
		{
			name:        "non-image allowed type",
			mutate:      func(c *Config) { c.Upload.AllowedTypes = []string{"image/png", "application/pdf"} },
			expectError: true,
			errorCount:  1,
		},
		{
			name: "enabled cache without address",
			mutate: func(c *Config) {
				c.Cache = CacheConfig{Enabled: true, DefaultTTL: time.Minute}
			},
			expectError: true,
			errorCount:  1,
		},
		{
			name: "bad logging and timeouts",
			mutate: func(c *Config) {
				c.Logging.Level = "loud"
				c.Server.ReadTimeout = 0
				c.Server.IdleTimeout = 10 * time.Minute
			},
			expectError: true,
			errorCount:  3,
		},
		{
			name:        "nil logging and server are skipped",
			mutate:      func(c *Config) { c.Logging = nil; c.Server = nil },
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErrors ValidationErrors
			require.True(t, errors.As(err, &validationErrors))
			assert.Len(t, validationErrors, tt.errorCount)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())

	ve := ValidationErrors{{Field: "port", Value: "x", Message: "bad"}}
	assert.Contains(t, ve.Error(), "config validation failed for port: bad (value: x)")
}
