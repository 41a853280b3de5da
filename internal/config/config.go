// Package config provides configuration structures and validation for the
// reporting service. It handles environment-based configuration for the HTTP
// server, the upstream field-service API, the report loader, and optional
// Kafka event publishing.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents
// a major subsystem's configuration and is validated during startup.
type Config struct {
	Application  ApplicationConfig
	Logging      LoggingConfig
	Server       ServerConfig
	FieldService FieldServiceConfig
	Loader       LoaderConfig
	Kafka        KafkaConfig
	Export       ExportConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// FieldServiceConfig contains settings for the upstream field-service API
type FieldServiceConfig struct {
	BaseURL   string        // Root URL of the field-service REST API
	APIKey    string        // Bearer token; empty disables the Authorization header
	Timeout   time.Duration // Per-request timeout on the HTTP client
	UserAgent string
}

// LoaderConfig tunes the incremental report loader
type LoaderConfig struct {
	PageSize       int // Dispatches requested per page
	MaxPages       int // Hard ceiling on dispatch pages per cycle
	BatchSize      int // Dispatches whose details are fetched per batch
	WorkerPoolSize int // Concurrent detail fetches across a batch
}

// KafkaConfig contains Kafka configuration for load-cycle event publishing
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	EventsTopic       string
	NumPartitions     int
	ReplicationFactor int
	WriteTimeout      time.Duration
}

// ExportConfig contains settings for summary export files
type ExportConfig struct {
	OutputDir string
}

// validate performs validation of all configuration values, ensuring they
// meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate FieldService config
	if c.FieldService.BaseURL == "" {
		validationErrors = append(validationErrors, "FIELD_SERVICE_BASE_URL is required")
	}
	if c.FieldService.Timeout <= 0 {
		validationErrors = append(validationErrors, "FIELD_SERVICE_TIMEOUT must be greater than 0")
	}

	// Validate Loader config
	if c.Loader.PageSize <= 0 {
		validationErrors = append(validationErrors, "LOADER_PAGE_SIZE must be greater than 0")
	}
	if c.Loader.MaxPages <= 0 {
		validationErrors = append(validationErrors, "LOADER_MAX_PAGES must be greater than 0")
	}
	if c.Loader.BatchSize <= 0 {
		validationErrors = append(validationErrors, "LOADER_BATCH_SIZE must be greater than 0")
	}
	if c.Loader.WorkerPoolSize <= 0 {
		validationErrors = append(validationErrors, "LOADER_WORKER_POOL_SIZE must be greater than 0")
	}

	// Kafka config is only validated when event publishing is enabled
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.EventsTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_EVENTS_TOPIC is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
	}

	// Validate Export config
	if c.Export.OutputDir == "" {
		validationErrors = append(validationErrors, "EXPORT_OUTPUT_DIR is required")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
