// Package config provides configuration loading for the publisher service.
package config

import (
	"fmt"
	"time"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

// Sink kinds.
const (
	SinkStream   = "stream"
	SinkNATS     = "nats"
	SinkObject   = "object"
	SinkPostgres = "postgres"
)

// Config is the service configuration. Connector settings (site URL,
// credentials) are not part of it; the host passes those per call.
type Config struct {
	Log     logging.Config `koanf:"log"`
	Server  ServerConfig   `koanf:"server"`
	HTTP    HTTPConfig     `koanf:"http"`
	Metrics MetricsConfig  `koanf:"metrics"`
	Sink    SinkConfig     `koanf:"sink"`
}

// ServerConfig controls the host RPC server.
type ServerConfig struct {
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig tunes the client used for remote sessions.
type HTTPConfig struct {
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
	UserAgent  string        `koanf:"user_agent"`
}

// MetricsConfig controls the Prometheus endpoint. Empty address disables it.
type MetricsConfig struct {
	Address string `koanf:"address"`
}

// SinkConfig selects where published data points are mirrored besides the
// host stream.
type SinkConfig struct {
	Kind     string         `koanf:"kind"`
	NATS     NATSConfig     `koanf:"nats"`
	Object   ObjectConfig   `koanf:"object"`
	Postgres PostgresConfig `koanf:"postgres"`
}

type NATSConfig struct {
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

type ObjectConfig struct {
	EndpointURL     string `koanf:"endpoint_url"`
	Region          string `koanf:"region"`
	UseSSL          bool   `koanf:"use_ssl"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Bucket          string `koanf:"bucket"`
	BasePrefix      string `koanf:"base_prefix"`
	Format          string `koanf:"format"`
	// LocalRoot writes objects to disk instead of an S3 endpoint.
	LocalRoot string `koanf:"local_root"`
}

type PostgresConfig struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log: *logging.NewDefaultConfig(),
		Server: ServerConfig{
			ShutdownTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RateLimit:  10.0,
			RateBurst:  5,
			UserAgent:  "SharePoint-Publisher/1.0",
		},
		Sink: SinkConfig{
			Kind: SinkStream,
			NATS: NATSConfig{
				SubjectPrefix: "datapoints",
			},
			Object: ObjectConfig{
				Bucket:     "publisher",
				BasePrefix: "datapoints",
				Format:     "parquet",
			},
			Postgres: PostgresConfig{
				Table: "data_points",
			},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst <= 0 {
		return fmt.Errorf("http.rate_limit and http.rate_burst must be > 0")
	}

	switch c.Sink.Kind {
	case SinkStream:
	case SinkNATS:
		if c.Sink.NATS.URL == "" {
			return fmt.Errorf("sink.nats.url is required for nats sink")
		}
	case SinkObject:
		if c.Sink.Object.EndpointURL == "" && c.Sink.Object.LocalRoot == "" {
			return fmt.Errorf("sink.object.endpoint_url or sink.object.local_root is required for object sink")
		}
		if c.Sink.Object.Format != "parquet" && c.Sink.Object.Format != "jsonl" {
			return fmt.Errorf("sink.object.format must be 'parquet' or 'jsonl', got %q", c.Sink.Object.Format)
		}
	case SinkPostgres:
		if c.Sink.Postgres.DSN == "" {
			return fmt.Errorf("sink.postgres.dsn is required for postgres sink")
		}
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}
	return nil
}

// ClientOptions converts the HTTP section for publisher factories.
func (c *Config) ClientOptions() endpoint.ClientOptions {
	return endpoint.ClientOptions{
		Timeout:    c.HTTP.Timeout,
		MaxRetries: c.HTTP.MaxRetries,
		RateLimit:  c.HTTP.RateLimit,
		RateBurst:  c.HTTP.RateBurst,
		UserAgent:  c.HTTP.UserAgent,
	}
}
