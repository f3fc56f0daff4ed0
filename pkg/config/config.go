package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Elections
	TradeRoundLength   time.Duration
	TallyCheckInterval time.Duration
	TradeMaxCandidates int
	SubscribersOnly    bool

	// Wallet rules
	MaxInfluencedBuy float64

	// Vote ingestion
	VoteRatePerSecond float64
	VoteBurst         int

	// Broker snapshot caching
	QuoteTTL       time.Duration
	InstrumentTTL  time.Duration
	BalanceTTL     time.Duration
	PositionTTL    time.Duration
	MarketStateTTL time.Duration

	// Market calendar
	MarketScanMaxDays int

	// Simulated broker seed
	SimStartingCash float64
	SimSymbols      string

	// Storage
	StorageMode  string // "postgres" or "memory"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Election defaults
		TradeRoundLength:   getDurationOrDefault("TRADE_ROUND_LENGTH", 2*time.Minute),
		TallyCheckInterval: getDurationOrDefault("TALLY_CHECK_INTERVAL", 5*time.Second),
		TradeMaxCandidates: getIntOrDefault("TRADE_MAX_CANDIDATES", 0),
		SubscribersOnly:    getBoolOrDefault("SUBSCRIBERS_ONLY", false),

		// Wallet defaults
		MaxInfluencedBuy: getFloat64OrDefault("MAX_INFLUENCED_BUY", 3000.0),

		// Vote ingestion defaults
		VoteRatePerSecond: getFloat64OrDefault("VOTE_RATE_PER_SECOND", 50.0),
		VoteBurst:         getIntOrDefault("VOTE_BURST", 100),

		// Snapshot cache defaults
		QuoteTTL:       getDurationOrDefault("QUOTE_TTL", 15*time.Second),
		InstrumentTTL:  getDurationOrDefault("INSTRUMENT_TTL", 12*time.Hour),
		BalanceTTL:     getDurationOrDefault("BALANCE_TTL", 30*time.Second),
		PositionTTL:    getDurationOrDefault("POSITION_TTL", 30*time.Second),
		MarketStateTTL: getDurationOrDefault("MARKET_STATE_TTL", 1*time.Hour),

		// Market calendar defaults
		MarketScanMaxDays: getIntOrDefault("MARKET_SCAN_MAX_DAYS", 366),

		// Simulated broker defaults
		SimStartingCash: getFloat64OrDefault("SIM_STARTING_CASH", 10000.0),
		SimSymbols:      getEnvOrDefault("SIM_SYMBOLS", "AAPL,AMZN,GOOG,MSFT,TSLA"),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "memory"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "crowdstream"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "crowdstream123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "crowdstream"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// PostgresConnString builds a lib/pq connection string from the config.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL)
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.TradeRoundLength <= 0 {
		return fmt.Errorf("TRADE_ROUND_LENGTH must be positive, got %s", c.TradeRoundLength)
	}

	if c.MaxInfluencedBuy <= 0 {
		return fmt.Errorf("MAX_INFLUENCED_BUY must be positive, got %f", c.MaxInfluencedBuy)
	}

	if c.MarketScanMaxDays <= 0 {
		return fmt.Errorf("MARKET_SCAN_MAX_DAYS must be positive, got %d", c.MarketScanMaxDays)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'memory', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
