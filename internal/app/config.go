package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	ImageBaseURL string `default:"" usage:"Base URL prefixed to relative menu image paths" flag:"image-base-url"`
	Storage      StorageConfig
	Payment      PaymentConfig
	Broker       BrokerConfig
	Track        RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// StorageConfig selects where terminal snapshots are kept.
type StorageConfig struct {
	Driver      string `default:"file" usage:"Snapshot storage: memory, file or postgres"`
	Dir         string `default:"data" usage:"Snapshot directory for the file driver"`
	Compress    bool   `default:"false" usage:"Gzip snapshot files"`
	DatabaseURL string `usage:"PostgreSQL connection URL (POS_STORAGE_DATABASEURL or DATABASE_URL)" flag:"database-url"`
}

// PaymentConfig tunes the simulated payment processor.
type PaymentConfig struct {
	DelayScale  float64 `default:"1" usage:"Multiplier for simulated payment delays, 0 disables them" flag:"payment-delay-scale"`
	DeclineRate float64 `default:"0.1" usage:"Fraction of card payments declined" flag:"payment-decline-rate"`
}

// BrokerConfig enables forwarding order events to RabbitMQ.
type BrokerConfig struct {
	URL      string `usage:"AMQP URL for order events, empty disables forwarding" flag:"broker-url"`
	Exchange string `default:"pos_orders" usage:"Topic exchange for order events"`
}

// RateLimitConfig controls the per-client sliding window rate limiter on
// the analytics beacon.
type RateLimitConfig struct {
	Max    int           `default:"60" usage:"Max tracked events per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/posify/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations that the loader cannot.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Dir == "" {
			return errors.New("snapshot directory is required for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set POS_STORAGE_DATABASEURL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Broker.URL != "" && c.Broker.Exchange == "" {
		return errors.New("broker exchange is required when a broker URL is set")
	}
	if c.Payment.DelayScale < 0 {
		return errors.New("payment delay scale must not be negative")
	}
	if c.Payment.DeclineRate < 0 || c.Payment.DeclineRate > 1 {
		return errors.New("payment decline rate must be within [0, 1]")
	}
	if c.Track.Max < 1 || c.Track.Window <= 0 {
		return errors.New("track rate limit needs a positive max and window")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's POS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
