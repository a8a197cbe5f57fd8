package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
)

const constituentsHTML = `<html><body>
<table class="wikitable" id="other"><tbody><tr><td>NOPE</td></tr></tbody></table>
<table class="wikitable sortable" id="constituents"><tbody>
<tr><th>Symbol</th><th>Security</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td></tr>
<tr><td><a href="#">BRK.B</a>
</td><td>Berkshire Hathaway</td></tr>
<tr><td> aapl </td><td>Apple Inc.</td></tr>
</tbody></table></body></html>`

func TestParseConstituents(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		wantErr bool
	}{
		{"constituents table", constituentsHTML, []string{"MMM", "BRK-B", "aapl"}, false},
		{"missing table", `<html><table id="x"></table></html>`, nil, true},
		{"empty table", `<table id="constituents"><tr><th>Symbol</th></tr></table>`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConstituents(strings.NewReader(tt.html))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectory_Symbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsHTML)
	}))
	defer srv.Close()

	d := NewDirectory(httputil.New(5*time.Second, logger.Nop()).DisableRetry(), srv.URL, logger.Nop())
	assert.Equal(t, "wikipedia", d.Name())

	got, err := d.Symbols(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDirectory_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDirectory(httputil.New(5*time.Second, logger.Nop()).DisableRetry(), srv.URL, logger.Nop())
	_, err := d.Symbols(context.Background())
	require.Error(t, err)
}
