package fmp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
)

// Client handles communication with the Financial Modeling Prep v3 API
// ⭐ SSOT: FMP API 호출은 이 클라이언트에서만
type Client struct {
	httpClient     *httputil.Client
	logger         *logger.Logger
	baseURL        string
	apiKey         string
	period         string
	statementLimit int
	profileChunk   int
}

// Options configures a Client
type Options struct {
	BaseURL        string
	APIKey         string
	Period         string // annual, quarter
	StatementLimit int
	ProfileChunk   int
}

// NewClient creates a new FMP client
func NewClient(httpClient *httputil.Client, opts Options, log *logger.Logger) *Client {
	if opts.StatementLimit < 2 {
		opts.StatementLimit = 2
	}
	if opts.ProfileChunk < 1 {
		opts.ProfileChunk = 50
	}
	return &Client{
		httpClient:     httpClient,
		logger:         log.WithComponent("fmp"),
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		period:         opts.Period,
		statementLimit: opts.StatementLimit,
		profileChunk:   opts.ProfileChunk,
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
}
