package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
)

// Directory scrapes the S&P 500 constituents table
// ⭐ SSOT: 원격 종목 디렉터리 조회는 이 클라이언트에서만
type Directory struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewDirectory creates a new constituents scraper
func NewDirectory(httpClient *httputil.Client, pageURL string, log *logger.Logger) *Directory {
	return &Directory{
		httpClient: httpClient,
		logger:     log.WithComponent("wikipedia"),
		url:        pageURL,
	}
}

var _ contracts.SymbolSource = (*Directory)(nil)

// Name returns the source name
func (d *Directory) Name() string {
	return "wikipedia"
}

// Symbols fetches the page and returns the tickers of the constituents table
func (d *Directory) Symbols(ctx context.Context) ([]string, error) {
	resp, err := d.httpClient.Get(ctx, d.url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	symbols, err := parseConstituents(resp.Body)
	if err != nil {
		return nil, err
	}

	d.logger.WithField("count", len(symbols)).Debug("Fetched constituents")
	return symbols, nil
}

// parseConstituents reads the first column of table#constituents.
// Class shares use a dot on the page and a dash on Yahoo (BRK.B -> BRK-B).
func parseConstituents(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	table := doc.Find("table#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	var symbols []string
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return // header row
		}
		symbol := strings.TrimSpace(cell.Text())
		if symbol == "" {
			return
		}
		symbols = append(symbols, strings.ReplaceAll(symbol, ".", "-"))
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("constituents table is empty")
	}
	return symbols, nil
}
