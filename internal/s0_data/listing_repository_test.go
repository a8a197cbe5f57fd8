package s0_data

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	poolCfg.MaxConns = 1 // temp table lives on one connection

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		CREATE TEMP TABLE listings (
			symbol TEXT PRIMARY KEY,
			name TEXT,
			market_cap DOUBLE PRECISION,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO listings (symbol, market_cap, active) VALUES
			('AAPL', 3.0e12, TRUE),
			('MSFT', 2.8e12, TRUE),
			('OLD', 1.0e9, FALSE),
			('NOCAP', NULL, TRUE)`)
	require.NoError(t, err)

	repo := NewListingRepository(pool)
	assert.Equal(t, "postgres", repo.Name())

	symbols, err := repo.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NOCAP"}, symbols)

	caps, err := repo.MarketCaps(ctx, []string{"AAPL", "NOCAP", "ZZZZ"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 3.0e12}, caps)
}
