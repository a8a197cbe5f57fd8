package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/trendscore/internal/contracts"
)

// ListingRepository reads tickers and market caps from the listings table:
//
//	CREATE TABLE listings (
//	    symbol     TEXT PRIMARY KEY,
//	    name       TEXT,
//	    market_cap DOUBLE PRECISION,
//	    active     BOOLEAN NOT NULL DEFAULT TRUE
//	);
//
// ⭐ SSOT: 종목/시가총액 DB 조회는 여기서만
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a new listing repository
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

var (
	_ contracts.SymbolSource    = (*ListingRepository)(nil)
	_ contracts.MarketCapLookup = (*ListingRepository)(nil)
)

// Name returns the source name
func (r *ListingRepository) Name() string {
	return "postgres"
}

// Symbols returns every active listing
func (r *ListingRepository) Symbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol
		FROM listings
		WHERE active
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	return symbols, nil
}

// MarketCaps returns the stored market caps of the requested symbols. Rows with a
// NULL market cap are left out of the map.
func (r *ListingRepository) MarketCaps(ctx context.Context, symbols []string) (map[string]float64, error) {
	query := `
		SELECT symbol, market_cap
		FROM listings
		WHERE symbol = ANY($1) AND market_cap IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query, symbols)
	if err != nil {
		return nil, fmt.Errorf("query market caps: %w", err)
	}
	defer rows.Close()

	caps := make(map[string]float64, len(symbols))
	for rows.Next() {
		var symbol string
		var cap float64
		if err := rows.Scan(&symbol, &cap); err != nil {
			return nil, fmt.Errorf("scan market cap: %w", err)
		}
		caps[symbol] = cap
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market caps: %w", err)
	}
	return caps, nil
}
