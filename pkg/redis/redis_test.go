package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Redis.Enabled = false

	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), FMPRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, FMPRateLimit.Limit, remaining)

	assert.NoError(t, limiter.For(YahooRateLimit).Wait(context.Background()))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	n, err := cache.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := config.Default()
	cfg.Redis.Enabled = true
	client, err := New(cfg)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	cache := NewCache(client, "trendscore-test")

	type payload struct {
		Symbols []string `json:"symbols"`
	}
	require.NoError(t, cache.Set(ctx, "a", payload{Symbols: []string{"AAPL"}}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"AAPL"}, got.Symbols)

	n, err := cache.Clear(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	found, err = cache.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	bucket := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "RunKey",
			fn:       func() string { return RunKey("u1", "p1", bucket) },
			expected: "run:u1:p1:1705320000",
		},
		{
			name:     "UniverseKey",
			fn:       func() string { return UniverseKey("wikipedia", bucket) },
			expected: "universe:wikipedia:1705320000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}
