package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (listings / market caps, optional)
	Database DatabaseConfig

	// Redis (result cache, shared rate limit)
	Redis RedisConfig

	// External APIs
	Yahoo     YahooConfig
	FMP       FMPConfig
	Wikipedia WikipediaConfig

	// Pipeline
	Screener  ScreenerConfig
	Scheduler SchedulerConfig

	// StrategyFile points at the YAML weights file; empty means built-in defaults
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds the Yahoo Finance chart endpoint settings
type YahooConfig struct {
	BaseURL     string
	Timeout     time.Duration
	RPS         float64 // requests per second
	Concurrency int     // symbols in flight per batch
}

// FMPConfig holds Financial Modeling Prep settings
type FMPConfig struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	RPS            float64
	Period         string // annual, quarter
	StatementLimit int
	ProfileChunk   int // symbols per bulk profile request
}

// WikipediaConfig holds the remote symbol directory location
type WikipediaConfig struct {
	SP500URL string
}

// ScreenerConfig holds the pipeline knobs
type ScreenerConfig struct {
	Variant              string // fundamentals, momentum
	BatchSize            int
	MaxConcurrentBatches int
	Workers              int
	SlopeWindow          int
	LookbackDays         int
	UniverseSource       string // static, list, wikipedia, postgres
	Symbols              []string
	MarketCapSource      string // fmp, postgres
	MinMarketCap         float64
	MaxUniverse          int
	CacheTTL             time.Duration
	BatchBackoff         time.Duration
	BatchTimeout         time.Duration
	RunTimeout           time.Duration // one API request, cold run included
}

// SchedulerConfig holds cache warm-up scheduling
type SchedulerConfig struct {
	Enabled    bool
	WarmupCron string
}

// Variants
const (
	VariantFundamentals = "fundamentals"
	VariantMomentum     = "momentum"
)

// Sources
const (
	SourceStatic    = "static"
	SourceList      = "list"
	SourceWikipedia = "wikipedia"
	SourcePostgres  = "postgres"
	SourceFMP       = "fmp"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			BaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			Timeout:     getEnvAsDuration("YAHOO_TIMEOUT", "10s"),
			RPS:         getEnvAsFloat("YAHOO_RPS", 5),
			Concurrency: getEnvAsInt("YAHOO_CONCURRENCY", 8),
		},

		FMP: FMPConfig{
			APIKey:         getEnv("FMP_API_KEY", ""),
			BaseURL:        getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			Timeout:        getEnvAsDuration("FMP_TIMEOUT", "7s"),
			RPS:            getEnvAsFloat("FMP_RPS", 5),
			Period:         getEnv("FMP_PERIOD", "annual"),
			StatementLimit: getEnvAsInt("FMP_STATEMENT_LIMIT", 2),
			ProfileChunk:   getEnvAsInt("FMP_PROFILE_CHUNK", 50),
		},

		Wikipedia: WikipediaConfig{
			SP500URL: getEnv("WIKIPEDIA_SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		Screener: ScreenerConfig{
			Variant:              getEnv("SCREENER_VARIANT", VariantFundamentals),
			BatchSize:            getEnvAsInt("SCREENER_BATCH_SIZE", 100),
			MaxConcurrentBatches: getEnvAsInt("SCREENER_MAX_CONCURRENT_BATCHES", 4),
			Workers:              getEnvAsInt("SCREENER_WORKERS", 8),
			SlopeWindow:          getEnvAsInt("SCREENER_SLOPE_WINDOW", 20),
			LookbackDays:         getEnvAsInt("SCREENER_LOOKBACK_DAYS", 365),
			UniverseSource:       getEnv("SCREENER_UNIVERSE_SOURCE", SourceStatic),
			Symbols:              getEnvAsList("SCREENER_SYMBOLS"),
			MarketCapSource:      getEnv("SCREENER_MARKET_CAP_SOURCE", SourceFMP),
			MinMarketCap:         getEnvAsFloat("SCREENER_MIN_MARKET_CAP", 0),
			MaxUniverse:          getEnvAsInt("SCREENER_MAX_UNIVERSE", 0),
			CacheTTL:             getEnvAsDuration("SCREENER_CACHE_TTL", "12h"),
			BatchBackoff:         getEnvAsDuration("SCREENER_BATCH_BACKOFF", "1s"),
			BatchTimeout:         getEnvAsDuration("SCREENER_BATCH_TIMEOUT", "60s"),
			RunTimeout:           getEnvAsDuration("SCREENER_RUN_TIMEOUT", "5m"),
		},

		Scheduler: SchedulerConfig{
			Enabled:    getEnvAsBool("SCHEDULER_ENABLED", true),
			WarmupCron: getEnv("SCHEDULER_WARMUP_CRON", "0 30 22 * * 1-5"),
		},

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and no environment lookups.
// Tests and embedded callers start from here.
func Default() *Config {
	return &Config{
		Port:     "8089",
		Env:      "development",
		Database: DatabaseConfig{MaxConns: 10, MinConns: 1, MaxConnLifetime: time.Hour, MaxConnIdleTime: 30 * time.Minute},
		Redis:    RedisConfig{Host: "localhost", Port: "6379"},
		Yahoo: YahooConfig{
			BaseURL:     "https://query1.finance.yahoo.com/v8/finance/chart",
			Timeout:     10 * time.Second,
			RPS:         5,
			Concurrency: 8,
		},
		FMP: FMPConfig{
			BaseURL:        "https://financialmodelingprep.com/api/v3",
			Timeout:        7 * time.Second,
			RPS:            5,
			Period:         "annual",
			StatementLimit: 2,
			ProfileChunk:   50,
		},
		Wikipedia: WikipediaConfig{SP500URL: "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"},
		Screener: ScreenerConfig{
			Variant:              VariantFundamentals,
			BatchSize:            100,
			MaxConcurrentBatches: 4,
			Workers:              8,
			SlopeWindow:          20,
			LookbackDays:         365,
			UniverseSource:       SourceStatic,
			MarketCapSource:      SourceFMP,
			CacheTTL:             12 * time.Hour,
			BatchBackoff:         time.Second,
			BatchTimeout:         60 * time.Second,
			RunTimeout:           5 * time.Minute,
		},
		Scheduler: SchedulerConfig{Enabled: true, WarmupCron: "0 30 22 * * 1-5"},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	s := c.Screener
	if s.Variant != VariantFundamentals && s.Variant != VariantMomentum {
		return fmt.Errorf("SCREENER_VARIANT must be one of: %s, %s", VariantFundamentals, VariantMomentum)
	}
	if s.BatchSize < 1 || s.BatchSize > 500 {
		return fmt.Errorf("SCREENER_BATCH_SIZE must be in [1, 500], got %d", s.BatchSize)
	}
	if s.MaxConcurrentBatches < 1 {
		return fmt.Errorf("SCREENER_MAX_CONCURRENT_BATCHES must be >= 1")
	}
	if s.Workers < 1 {
		return fmt.Errorf("SCREENER_WORKERS must be >= 1")
	}
	if s.SlopeWindow < 2 {
		return fmt.Errorf("SCREENER_SLOPE_WINDOW must be >= 2, got %d", s.SlopeWindow)
	}
	if s.LookbackDays < s.SlopeWindow {
		return fmt.Errorf("SCREENER_LOOKBACK_DAYS must cover the slope window")
	}
	if s.MinMarketCap < 0 || s.MaxUniverse < 0 {
		return fmt.Errorf("SCREENER_MIN_MARKET_CAP and SCREENER_MAX_UNIVERSE must be >= 0")
	}
	if s.CacheTTL <= 0 {
		return fmt.Errorf("SCREENER_CACHE_TTL must be positive")
	}
	if s.RunTimeout < s.BatchTimeout {
		return fmt.Errorf("SCREENER_RUN_TIMEOUT must be >= SCREENER_BATCH_TIMEOUT")
	}

	switch s.UniverseSource {
	case SourceStatic, SourceWikipedia:
	case SourceList:
		if len(s.Symbols) == 0 {
			return fmt.Errorf("SCREENER_SYMBOLS is required when SCREENER_UNIVERSE_SOURCE=list")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when SCREENER_UNIVERSE_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown SCREENER_UNIVERSE_SOURCE: %s", s.UniverseSource)
	}

	if s.MinMarketCap > 0 {
		switch s.MarketCapSource {
		case SourceFMP:
			if c.FMP.APIKey == "" {
				return fmt.Errorf("FMP_API_KEY is required for the fmp market cap source")
			}
		case SourcePostgres:
			if c.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required for the postgres market cap source")
			}
		default:
			return fmt.Errorf("unknown SCREENER_MARKET_CAP_SOURCE: %s", s.MarketCapSource)
		}
	}

	if s.Variant == VariantFundamentals && c.FMP.APIKey == "" {
		return fmt.Errorf("FMP_API_KEY is required for the fundamentals variant")
	}
	if c.FMP.Period != "annual" && c.FMP.Period != "quarter" {
		return fmt.Errorf("FMP_PERIOD must be annual or quarter")
	}
	if c.FMP.StatementLimit < 2 {
		return fmt.Errorf("FMP_STATEMENT_LIMIT must be >= 2")
	}

	return nil
}

// NeedsDatabase reports whether any configured source reads from PostgreSQL
func (c *Config) NeedsDatabase() bool {
	if c.Screener.UniverseSource == SourcePostgres {
		return true
	}
	return c.Screener.MinMarketCap > 0 && c.Screener.MarketCapSource == SourcePostgres
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
