package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("FMP_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8089", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, VariantFundamentals, cfg.Screener.Variant)
	assert.Equal(t, 100, cfg.Screener.BatchSize)
	assert.Equal(t, 20, cfg.Screener.SlopeWindow)
	assert.Equal(t, 12*time.Hour, cfg.Screener.CacheTTL)
	assert.Equal(t, time.Second, cfg.Screener.BatchBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Screener.RunTimeout)
	assert.Equal(t, 7*time.Second, cfg.FMP.Timeout)
	assert.Equal(t, 2, cfg.FMP.StatementLimit)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("SCREENER_VARIANT", "momentum")
	t.Setenv("SCREENER_BATCH_SIZE", "150")
	t.Setenv("SCREENER_UNIVERSE_SOURCE", "list")
	t.Setenv("SCREENER_SYMBOLS", " aapl, msft ,,nvda ")
	t.Setenv("SCREENER_CACHE_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, VariantMomentum, cfg.Screener.Variant)
	assert.Equal(t, 150, cfg.Screener.BatchSize)
	assert.Equal(t, []string{"aapl", "msft", "nvda"}, cfg.Screener.Symbols)
	assert.Equal(t, 30*time.Minute, cfg.Screener.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults with key",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid env",
			mutate:  func(c *Config) { c.Env = "invalid" },
			wantErr: "ENV must be one of",
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Screener.Variant = "value" },
			wantErr: "SCREENER_VARIANT",
		},
		{
			name:    "batch size too large",
			mutate:  func(c *Config) { c.Screener.BatchSize = 1000 },
			wantErr: "SCREENER_BATCH_SIZE",
		},
		{
			name:    "slope window too small",
			mutate:  func(c *Config) { c.Screener.SlopeWindow = 1 },
			wantErr: "SCREENER_SLOPE_WINDOW",
		},
		{
			name:    "list source without symbols",
			mutate:  func(c *Config) { c.Screener.UniverseSource = SourceList },
			wantErr: "SCREENER_SYMBOLS",
		},
		{
			name:    "postgres source without database",
			mutate:  func(c *Config) { c.Screener.UniverseSource = SourcePostgres },
			wantErr: "DATABASE_URL",
		},
		{
			name: "postgres market cap without database",
			mutate: func(c *Config) {
				c.Screener.MinMarketCap = 10e9
				c.Screener.MarketCapSource = SourcePostgres
			},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "fundamentals without key",
			mutate:  func(c *Config) { c.FMP.APIKey = "" },
			wantErr: "FMP_API_KEY",
		},
		{
			name: "momentum without key",
			mutate: func(c *Config) {
				c.FMP.APIKey = ""
				c.Screener.Variant = VariantMomentum
			},
		},
		{
			name:    "run timeout shorter than a batch",
			mutate:  func(c *Config) { c.Screener.RunTimeout = 10 * time.Second },
			wantErr: "SCREENER_RUN_TIMEOUT",
		},
		{
			name:    "bad fmp period",
			mutate:  func(c *Config) { c.FMP.Period = "monthly" },
			wantErr: "FMP_PERIOD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.FMP.APIKey = "test-key"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNeedsDatabase(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.NeedsDatabase())

	cfg.Screener.UniverseSource = SourcePostgres
	assert.True(t, cfg.NeedsDatabase())

	cfg = Default()
	cfg.Screener.MarketCapSource = SourcePostgres
	assert.False(t, cfg.NeedsDatabase(), "threshold disabled")
	cfg.Screener.MinMarketCap = 1
	assert.True(t, cfg.NeedsDatabase())
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "2.5e9")
	assert.Equal(t, 2.5e9, getEnvAsFloat("TEST_FLOAT", 0))

	t.Setenv("TEST_FLOAT", "x")
	assert.Equal(t, 1.5, getEnvAsFloat("TEST_FLOAT", 1.5))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}
