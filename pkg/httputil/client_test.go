package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/trendscore/pkg/logger"
)

type countingWaiter struct {
	calls int32
	err   error
}

func (w *countingWaiter) Wait(ctx context.Context) error {
	atomic.AddInt32(&w.calls, 1)
	return w.err
}

func TestNew(t *testing.T) {
	client := New(0, logger.Nop())
	require.NotNil(t, client)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)

	client = New(5*time.Second, logger.Nop())
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestWithRetry(t *testing.T) {
	client := New(time.Second, logger.Nop()).WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(time.Second, logger.Nop()).WithHeader("X-Test", "yes")

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out.Status)
}

func TestGetJSON_StatusError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "no such symbol", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(time.Second, logger.Nop()).WithRetry(3, time.Millisecond)

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL+"?apikey=secret", &out)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NotContains(t, err.Error(), "secret")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx is not retried")
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(time.Second, logger.Nop()).WithRetry(3, time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(time.Second, logger.Nop()).WithRetry(1, time.Millisecond)

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestRetryStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(time.Second, logger.Nop()).WithRetry(5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitersConsulted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	first := &countingWaiter{}
	client := New(time.Second, logger.Nop()).
		WithRateLimiter(first).
		WithRateLimiter(rate.NewLimiter(rate.Inf, 1)).
		WithRateLimiter(nil)

	var out map[string]interface{}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, int32(2), atomic.LoadInt32(&first.calls))

	blocked := New(time.Second, logger.Nop()).WithRateLimiter(&countingWaiter{err: errors.New("quota")})
	err := blocked.GetJSON(context.Background(), server.URL, &out)
	assert.ErrorContains(t, err, "rate limit wait failed")
}

func TestRedact(t *testing.T) {
	u, _ := url.Parse("https://example.com/api/v3/profile/AAPL?apikey=abc&limit=2")
	got := redact(&http.Request{URL: u})
	assert.Contains(t, got, "apikey=REDACTED")
	assert.Contains(t, got, "limit=2")
	assert.Equal(t, "", redact(nil))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}
