package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
	"github.com/wonny/trendscore/pkg/optional"
)

// Client fetches daily bars from the Yahoo Finance v8 chart endpoint
// ⭐ SSOT: Yahoo 시세 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	concurrency int
}

// NewClient creates a new Yahoo chart client. concurrency bounds the symbols in flight per batch.
func NewClient(httpClient *httputil.Client, baseURL string, concurrency int, log *logger.Logger) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		httpClient:  httpClient,
		logger:      log.WithComponent("yahoo"),
		baseURL:     baseURL,
		concurrency: concurrency,
	}
}

var _ contracts.PriceProvider = (*Client)(nil)

// FetchBatch fetches [from, to] for every symbol of the batch.
// Unknown symbols are omitted. The batch fails only when every symbol failed.
func (c *Client) FetchBatch(ctx context.Context, symbols []string, from, to time.Time) (map[string][]contracts.PriceBar, error) {
	var (
		mu     sync.Mutex
		result = make(map[string][]contracts.PriceBar, len(symbols))
		errs   []error
	)

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			bars, err := c.FetchSymbol(ctx, symbol, from, to)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, contracts.ErrSymbolNotFound):
				c.logger.WithField("symbol", symbol).Debug("Symbol not found")
			case err != nil:
				errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			case len(bars) > 0:
				result[symbol] = bars
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(symbols) > 0 && len(errs) == len(symbols) {
		return nil, fmt.Errorf("all %d symbols failed: %w", len(symbols), errors.Join(errs...))
	}
	if len(errs) > 0 {
		c.logger.WithFields(map[string]interface{}{
			"failed": len(errs),
			"batch":  len(symbols),
		}).Warn("Some symbols failed in batch")
	}
	return result, nil
}

// FetchSymbol fetches daily bars for one symbol
func (c *Client) FetchSymbol(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceBar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		if httputil.IsNotFound(err) {
			return nil, contracts.ErrSymbolNotFound
		}
		return nil, err
	}

	bars, err := resp.toBars(symbol)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// chartResponse mirrors the v8 chart payload. Price arrays hold nulls on missing days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (r *chartResponse) toBars(symbol string) ([]contracts.PriceBar, error) {
	if r.Chart.Error != nil {
		if r.Chart.Error.Code == "Not Found" {
			return nil, contracts.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("chart error %s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, contracts.ErrSymbolNotFound
	}

	res := r.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := res.Indicators.Quote[0]

	bars := make([]contracts.PriceBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		bar := contracts.PriceBar{
			Symbol: symbol,
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   optional.FromPtr(at(q.Open, i)),
			High:   optional.FromPtr(at(q.High, i)),
			Low:    optional.FromPtr(at(q.Low, i)),
			Close:  optional.FromPtr(at(q.Close, i)),
		}
		if v := at(q.Volume, i); v != nil {
			bar.Volume = null.IntFrom(*v)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func at[T any](values []*T, i int) *T {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
