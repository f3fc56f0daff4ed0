package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 2*time.Minute, cfg.TradeRoundLength)
	assert.Equal(t, 5*time.Second, cfg.TallyCheckInterval)
	assert.Equal(t, 0, cfg.TradeMaxCandidates)
	assert.False(t, cfg.SubscribersOnly)
	assert.Equal(t, 3000.0, cfg.MaxInfluencedBuy)
	assert.Equal(t, 50.0, cfg.VoteRatePerSecond)
	assert.Equal(t, 366, cfg.MarketScanMaxDays)
	assert.Equal(t, "memory", cfg.StorageMode)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("TRADE_ROUND_LENGTH", "30s")
	t.Setenv("SUBSCRIBERS_ONLY", "true")
	t.Setenv("MAX_INFLUENCED_BUY", "1500")
	t.Setenv("STORAGE_MODE", "postgres")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.TradeRoundLength)
	assert.True(t, cfg.SubscribersOnly)
	assert.Equal(t, 1500.0, cfg.MaxInfluencedBuy)
	assert.Equal(t, "postgres", cfg.StorageMode)
}

func TestLoadFromEnvBadValueKeepsDefault(t *testing.T) {
	t.Setenv("TRADE_ROUND_LENGTH", "not-a-duration")
	t.Setenv("VOTE_BURST", "not-a-number")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.TradeRoundLength)
	assert.Equal(t, 100, cfg.VoteBurst)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			HTTPPort:          "8080",
			TradeRoundLength:  2 * time.Minute,
			MaxInfluencedBuy:  3000,
			MarketScanMaxDays: 366,
			StorageMode:       "memory",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "zero-round-length", mutate: func(c *Config) { c.TradeRoundLength = 0 }, wantErr: true},
		{name: "negative-influence-cap", mutate: func(c *Config) { c.MaxInfluencedBuy = -1 }, wantErr: true},
		{name: "zero-scan-days", mutate: func(c *Config) { c.MarketScanMaxDays = 0 }, wantErr: true},
		{name: "bad-storage-mode", mutate: func(c *Config) { c.StorageMode = "redis" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresConnString(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db.internal",
		PostgresPort: "5433",
		PostgresUser: "crowd",
		PostgresPass: "secret",
		PostgresDB:   "votes",
		PostgresSSL:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=crowd password=secret dbname=votes sslmode=require",
		cfg.PostgresConnString())
}
