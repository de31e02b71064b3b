package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the CLI and client.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DHL Express
	DHLAPIKey    string        `envconfig:"DHL_API_KEY"`
	DHLAPISecret string        `envconfig:"DHL_API_SECRET"`
	DHLTestMode  bool          `envconfig:"DHL_TEST_MODE" default:"false"`
	DHLBaseURL   string        `envconfig:"DHL_BASE_URL"`
	DHLTimeout   time.Duration `envconfig:"DHL_TIMEOUT" default:"30s"`
	DHLUseMock   bool          `envconfig:"DHL_USE_MOCK" default:"false"`

	// Telemetry
	MetricsAddr  string `envconfig:"METRICS_ADDR"` // serve /metrics and /health while a command runs; empty disables
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"delivro-dhlexpress"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("dhl.test_mode", c.DHLTestMode),
	}
}
