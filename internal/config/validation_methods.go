package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("configuration validation failed: %s", strings.Join(messages, "; "))
}

// Has checks if ValidationErrors contains any errors
func (ve ValidationErrors) Has() bool {
	return len(ve) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	validationErrors = append(validationErrors, c.validateServer()...)
	validationErrors = append(validationErrors, c.validateBackend()...)
	validationErrors = append(validationErrors, c.validateUpload()...)
	validationErrors = append(validationErrors, c.validateCache()...)

	if c.Logging != nil {
		validationErrors = append(validationErrors, c.validateLogging()...)
	}

	if c.Server != nil {
		validationErrors = append(validationErrors, c.validateServerTimeouts()...)
	}

	if validationErrors.Has() {
		return validationErrors
	}

	return nil
}

func (c *Config) validateServer() ValidationErrors {
	var errors ValidationErrors

	if c.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port cannot be empty",
		})
	} else if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be a valid integer",
		})
	} else if port < 1 || port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be between 1 and 65535",
		})
	}

	validEnvs := []string{"development", "production", "test", "staging"}
	if c.Environment != "" && !slices.Contains(validEnvs, c.Environment) {
		errors = append(errors, ValidationError{
			Field:   "environment",
			Value:   c.Environment,
			Message: "environment must be one of: development, production, test, staging",
		})
	}

	return errors
}

func (c *Config) validateBackend() ValidationErrors {
	var errors ValidationErrors

	if c.Backend.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.base_url",
			Value:   c.Backend.BaseURL,
			Message: "backend URL cannot be empty",
		})
	} else if parsed, err := url.Parse(c.Backend.BaseURL); err != nil || parsed.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.base_url",
			Value:   c.Backend.BaseURL,
			Message: "backend URL must be an absolute URL",
		})
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, ValidationError{
			Field:   "backend.base_url",
			Value:   parsed.Scheme,
			Message: "backend URL must use http or https scheme",
		})
	}

	if c.Backend.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "backend.timeout",
			Value:   c.Backend.Timeout,
			Message: "backend timeout must be greater than 0",
		})
	}

	if !strings.HasPrefix(c.Backend.PlaceholderURL, "/") {
		errors = append(errors, ValidationError{
			Field:   "backend.placeholder_url",
			Value:   c.Backend.PlaceholderURL,
			Message: "placeholder URL must be a root-relative path",
		})
	}

	if c.Backend.MinimumScore < 0 || c.Backend.MinimumScore > 1 {
		errors = append(errors, ValidationError{
			Field:   "backend.minimum_score",
			Value:   c.Backend.MinimumScore,
			Message: "minimum score must be between 0 and 1",
		})
	}

	return errors
}

func (c *Config) validateUpload() ValidationErrors {
	var errors ValidationErrors

	maxAllowed := int64(100 << 20)
	if c.Upload.MaxUploadSize <= 0 || c.Upload.MaxUploadSize > maxAllowed {
		errors = append(errors, ValidationError{
			Field:   "upload.max_upload_size",
			Value:   c.Upload.MaxUploadSize,
			Message: fmt.Sprintf("max upload size must be between 1 and %d bytes (100MB)", maxAllowed),
		})
	}

	for _, t := range c.Upload.AllowedTypes {
		if !strings.HasPrefix(t, "image/") {
			errors = append(errors, ValidationError{
				Field:   "upload.allowed_types",
				Value:   t,
				Message: "allowed types must be image MIME types",
			})
		}
	}

	if c.Upload.MaxDimension < 0 {
		errors = append(errors, ValidationError{
			Field:   "upload.max_dimension",
			Value:   c.Upload.MaxDimension,
			Message: "max dimension cannot be negative",
		})
	}

	if c.Upload.MaxPixels < 0 {
		errors = append(errors, ValidationError{
			Field:   "upload.max_pixels",
			Value:   c.Upload.MaxPixels,
			Message: "max pixels cannot be negative",
		})
	}

	if c.Upload.JPEGQuality < 0 || c.Upload.JPEGQuality > 100 {
		errors = append(errors, ValidationError{
			Field:   "upload.jpeg_quality",
			Value:   c.Upload.JPEGQuality,
			Message: "JPEG quality must be between 0 and 100",
		})
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors

	if !c.Cache.Enabled {
		return errors
	}

	if c.Cache.Address == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.address",
			Value:   c.Cache.Address,
			Message: "cache address is required when the cache is enabled",
		})
	}

	if c.Cache.Database < 0 || c.Cache.Database > 15 {
		errors = append(errors, ValidationError{
			Field:   "cache.database",
			Value:   c.Cache.Database,
			Message: "cache database must be between 0 and 15",
		})
	}

	if c.Cache.DefaultTTL <= 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.default_ttl",
			Value:   c.Cache.DefaultTTL,
			Message: "cache TTL must be greater than 0",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := []string{"debug", "info", "warn", "warning", "error", "fatal", "panic"}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "logging level must be one of: " + strings.Join(validLevels, ", "),
		})
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" && c.Logging.Format != "text" {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: "logging format must be one of: json, console, text",
		})
	}

	return errors
}

func (c *Config) validateServerTimeouts() ValidationErrors {
	var errors ValidationErrors

	check := func(field string, d time.Duration) {
		if d <= 0 {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   d,
				Message: "timeout must be greater than 0",
			})
		} else if d > 5*time.Minute {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   d,
				Message: "timeout should not exceed 5 minutes",
			})
		}
	}

	check("server.read_timeout", c.Server.ReadTimeout)
	check("server.write_timeout", c.Server.WriteTimeout)
	check("server.idle_timeout", c.Server.IdleTimeout)

	return errors
}
