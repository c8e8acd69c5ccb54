package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "SEED_SAMPLE_SCORES", "LEADERBOARD_CACHE_TTL", "STATS_REFRESH_INTERVAL", "REDIS_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.False(t, cfg.SeedSampleScores)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	assert.Equal(t, time.Minute, cfg.StatsRefreshInterval)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("SEED_SAMPLE_SCORES", "true")
	t.Setenv("LEADERBOARD_CACHE_TTL", "5s")
	t.Setenv("STATS_REFRESH_INTERVAL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.SeedSampleScores)
	assert.Equal(t, 5*time.Second, cfg.LeaderboardCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.StatsRefreshInterval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"STORE_BACKEND":          "mongo",
		"SEED_SAMPLE_SCORES":     "perhaps",
		"LEADERBOARD_CACHE_TTL":  "soon",
		"STATS_REFRESH_INTERVAL": "0s",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
