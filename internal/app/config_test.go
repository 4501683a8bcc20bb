package app

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:    "0.0.0.0:8080",
		Storage: StorageConfig{Driver: DriverFile, Dir: "data"},
		Payment: PaymentConfig{DelayScale: 1, DeclineRate: 0.1},
		Track:   RateLimitConfig{Max: 60, Window: time.Minute},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory", mutate: func(c *Config) { c.Storage = StorageConfig{Driver: DriverMemory} }},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "unknown storage driver"},
		{name: "file without dir", mutate: func(c *Config) { c.Storage.Dir = "" }, wantErr: "snapshot directory"},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: "database URL"},
		{name: "broker without exchange", mutate: func(c *Config) { c.Broker.URL = "amqp://localhost" }, wantErr: "broker exchange"},
		{name: "negative delay", mutate: func(c *Config) { c.Payment.DelayScale = -1 }, wantErr: "delay scale"},
		{name: "decline rate above one", mutate: func(c *Config) { c.Payment.DeclineRate = 1.5 }, wantErr: "decline rate"},
		{name: "zero track window", mutate: func(c *Config) { c.Track.Window = 0 }, wantErr: "track rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/pos")

	cfg := validConfig()
	cfg.applyPlatformDefaults()
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/pos", cfg.Storage.DatabaseURL)

	cfg = validConfig()
	cfg.Addr = "127.0.0.1:7000"
	cfg.Storage.DatabaseURL = "postgres://explicit"
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "postgres://explicit", cfg.Storage.DatabaseURL)
}

func TestOriginChecker(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/orders", nil)
	r.Header.Set("Origin", "https://evil.example")

	assert.True(t, originChecker([]string{"*"})(r))
	assert.False(t, originChecker([]string{"https://pos.example"})(r))

	r.Header.Set("Origin", "https://pos.example")
	assert.True(t, originChecker([]string{"https://pos.example"})(r))
}
