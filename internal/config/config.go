// Package config loads the gallery frontend configuration from the
// environment and validates it before the server starts.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	Backend     BackendConfig
	Upload      UploadConfig
	Cache       CacheConfig
	Logging     *LoggingConfig
	Server      *ServerConfig
}

// BackendConfig points at the debate REST API
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	PlaceholderURL string
	MinimumScore   float64
	IncludeAll     bool
}

// UploadConfig bounds the record form uploads
type UploadConfig struct {
	MaxUploadSize int64
	AllowedTypes  []string
	MaxDimension  int
	MaxPixels     int64
	JPEGQuality   int
}

// CacheConfig holds Redis/Valkey settings
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	DefaultTTL      time.Duration
	ResolvedTTL     time.Duration
	TokenTTL        time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	minimumScore, err := strconv.ParseFloat(getEnv("SEARCH_MINIMUM_SCORE", "0.001"), 64)
	if err != nil {
		minimumScore = -1 // rejected by Validate
	}
	includeAll, _ := strconv.ParseBool(getEnv("SEARCH_INCLUDE_ALL", "false"))
	cacheEnabled, _ := strconv.ParseBool(getEnv("CACHE_ENABLED", "false"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	maxDimension, _ := strconv.Atoi(getEnv("CAPTURE_MAX_DIMENSION", "2000"))
	maxPixels, _ := strconv.ParseInt(getEnv("MAX_IMAGE_PIXELS", "50000000"), 10, 64)
	jpegQuality, _ := strconv.Atoi(getEnv("CAPTURE_JPEG_QUALITY", "85"))

	config := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
			Timeout:        parseDuration(getEnv("BACKEND_TIMEOUT", "15s"), 15*time.Second),
			PlaceholderURL: getEnv("PLACEHOLDER_URL", "/static/images/placeholder.svg"),
			MinimumScore:   minimumScore,
			IncludeAll:     includeAll,
		},
		Upload: UploadConfig{
			MaxUploadSize: parseSize(getEnv("MAX_UPLOAD_SIZE", "10MB")),
			AllowedTypes:  parseList(getEnv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/gif,image/webp")),
			MaxDimension:  maxDimension,
			MaxPixels:     maxPixels,
			JPEGQuality:   jpegQuality,
		},
		Cache: CacheConfig{
			Enabled:         cacheEnabled,
			Address:         getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			Database:        redisDB,
			DefaultTTL:      parseDuration(getEnv("CACHE_DEFAULT_TTL", "1m"), time.Minute),
			ResolvedTTL:     parseDuration(getEnv("CACHE_RESOLVED_TTL", "1h"), time.Hour),
			TokenTTL:        parseDuration(getEnv("CACHE_TOKEN_TTL", "24h"), 24*time.Hour),
			MaxRetries:      3,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolSize:        10,
			MinIdleConns:    2,
			PoolTimeout:     4 * time.Second,
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  parseDuration(getEnv("READ_TIMEOUT", "15s"), 15*time.Second),
			WriteTimeout: parseDuration(getEnv("WRITE_TIMEOUT", "60s"), 60*time.Second),
			IdleTimeout:  parseDuration(getEnv("SERVER_TIMEOUT", "60s"), 60*time.Second),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// parseSize parses size strings like "10MB", "512KB" into bytes
func parseSize(sizeStr string) int64 {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	for suffix, mult := range map[string]int64{"MB": 1 << 20, "KB": 1 << 10} {
		if strings.HasSuffix(sizeStr, suffix) {
			if num, err := strconv.ParseInt(strings.TrimSuffix(sizeStr, suffix), 10, 64); err == nil {
				return num * mult
			}
		}
	}

	// Default to 10MB if parsing fails
	return 10 << 20
}

// parseList parses comma-separated strings into slices
func parseList(listStr string) []string {
	if listStr == "" {
		return []string{}
	}

	items := strings.Split(listStr, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Addr returns the listen address
func (c *Config) Addr() string {
	if c.Environment == "production" {
		return ":" + c.Port
	}
	return c.Host + ":" + c.Port
}
