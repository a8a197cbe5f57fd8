package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
)

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"%s","gmtoffset":-14400},
"timestamp":[1704983400,1705069800,1705415400],
"indicators":{"quote":[{"open":[185.0,186.0,null],"high":[186.7,187.1,null],
"low":[183.6,185.2,182.1],"close":[185.6,185.9,183.6],"volume":[40477800,null,65603000]}]}}],"error":null}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc := httputil.New(5*time.Second, logger.Nop()).DisableRetry()
	return NewClient(hc, srv.URL, 4, logger.Nop())
}

func TestFetchSymbol_ParsesNullsAndDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, chartJSON, "AAPL")
	})

	bars, err := c.FetchSymbol(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 185.6, bars[0].Close.Float64)
	assert.True(t, bars[0].Volume.Valid)

	assert.False(t, bars[1].Volume.Valid, "null volume stays undefined")
	assert.False(t, bars[2].High.Valid, "null high stays undefined")
	assert.True(t, bars[2].Low.Valid)
}

func TestFetchBatch_OmitsUnknownSymbols(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/")
		if symbol == "ZZZZ" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			return
		}
		fmt.Fprintf(w, chartJSON, symbol)
	})

	got, err := c.FetchBatch(context.Background(), []string{"AAPL", "MSFT", "ZZZZ"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "AAPL")
	assert.Contains(t, got, "MSFT")
	assert.NotContains(t, got, "ZZZZ")
}

func TestFetchBatch_PartialFailureIsNotFatal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/MSFT") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, chartJSON, "AAPL")
	})

	got, err := c.FetchBatch(context.Background(), []string{"AAPL", "MSFT"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchBatch_AllFailed(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchBatch(context.Background(), []string{"AAPL", "MSFT"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 symbols failed")
	assert.Equal(t, int32(2), calls.Load())
}
