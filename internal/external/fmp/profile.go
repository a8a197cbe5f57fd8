package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/trendscore/internal/contracts"
)

var _ contracts.MarketCapLookup = (*Client)(nil)

type profile struct {
	Symbol string   `json:"symbol"`
	MktCap *float64 `json:"mktCap"`
}

// MarketCaps looks market caps up with bulk profile requests of at most profileChunk symbols.
// Symbols FMP does not return, or returns without a cap, are absent from the map.
// A failed chunk leaves its symbols absent; only a total failure is an error.
func (c *Client) MarketCaps(ctx context.Context, symbols []string) (map[string]float64, error) {
	caps := make(map[string]float64, len(symbols))
	var failed, chunks int
	var lastErr error

	for start := 0; start < len(symbols); start += c.profileChunk {
		end := min(start+c.profileChunk, len(symbols))
		chunk := symbols[start:end]
		chunks++

		var profiles []profile
		escaped := make([]string, len(chunk))
		for i, s := range chunk {
			escaped[i] = url.PathEscape(s)
		}
		path := "profile/" + strings.Join(escaped, ",")
		if err := c.httpClient.GetJSON(ctx, c.endpoint(path, nil), &profiles); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			lastErr = err
			c.logger.WithError(err).WithField("symbols", len(chunk)).Warn("Profile chunk failed")
			continue
		}

		for _, p := range profiles {
			if p.MktCap == nil {
				continue
			}
			caps[strings.ToUpper(p.Symbol)] = *p.MktCap
		}
	}

	if chunks > 0 && failed == chunks {
		return nil, fmt.Errorf("market cap lookup failed: %w", lastErr)
	}
	return caps, nil
}
