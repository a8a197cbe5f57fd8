package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/optional"
)

var _ contracts.FundamentalsProvider = (*Client)(nil)

type incomeStatement struct {
	Date      string   `json:"date"`
	Revenue   *float64 `json:"revenue"`
	NetIncome *float64 `json:"netIncome"`
}

type cashFlowStatement struct {
	Date              string   `json:"date"`
	OperatingCashFlow *float64 `json:"operatingCashFlow"`
}

// FetchFundamentals fetches the income and cash flow statements of one symbol and maps
// them into a FundamentalReport. An unknown symbol yields an empty report.
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalReport, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.statementLimit))
	if c.period == "quarter" {
		params.Set("period", "quarter")
	}

	var income []incomeStatement
	if err := c.getStatements(ctx, "income-statement/"+url.PathEscape(symbol), params, &income); err != nil {
		return nil, fmt.Errorf("income statement %s: %w", symbol, err)
	}

	var cashFlow []cashFlowStatement
	if err := c.getStatements(ctx, "cash-flow-statement/"+url.PathEscape(symbol), params, &cashFlow); err != nil {
		return nil, fmt.Errorf("cash flow statement %s: %w", symbol, err)
	}

	report := &contracts.FundamentalReport{
		Symbol: symbol,
		Items:  make(map[contracts.LineItem][]contracts.PeriodValue, len(contracts.LineItems)),
	}
	for i, s := range income {
		date := parseDate(s.Date)
		report.Items[contracts.Revenue] = append(report.Items[contracts.Revenue],
			contracts.PeriodValue{Date: date, Seq: i, Value: optional.FromPtr(s.Revenue)})
		report.Items[contracts.NetIncome] = append(report.Items[contracts.NetIncome],
			contracts.PeriodValue{Date: date, Seq: i, Value: optional.FromPtr(s.NetIncome)})
	}
	for i, s := range cashFlow {
		report.Items[contracts.OperatingCashFlow] = append(report.Items[contracts.OperatingCashFlow],
			contracts.PeriodValue{Date: parseDate(s.Date), Seq: i, Value: optional.FromPtr(s.OperatingCashFlow)})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"income":    len(income),
		"cash_flow": len(cashFlow),
	}).Debug("Fetched statements")
	return report, nil
}

// getStatements decodes a statement list. FMP answers unknown symbols with an empty
// array; a 404 is treated the same way.
func (c *Client) getStatements(ctx context.Context, path string, params url.Values, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, c.endpoint(path, params), dest)
	if httputil.IsNotFound(err) {
		return nil
	}
	return err
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
