package collector_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MarketLedger/internal/collector"
	"MarketLedger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sym := r.URL.Query().Get("symbol")
		switch r.URL.Path {
		case "/api/v1/quote":
			if sym != "AAPL" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, `{"symbol":"AAPL","name":"Apple","price":190,"change":-2,"change_pct":-1.04,"sector":"Technology","eps":null}`)
		case "/api/v1/bars/daily":
			assert.Equal(t, "1mo", r.URL.Query().Get("period"))
			fmt.Fprint(w, `[{"timestamp":1709424000,"close":105},{"timestamp":1709337600,"close":100},{"timestamp":1709510400,"close":null}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRESTFetchQuote(t *testing.T) {
	t.Parallel()

	srv := restServer(t)
	f := collector.NewRESTFetcher(srv.URL, "", 0, collector.WithAPIKey("secret"))

	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Technology", q.Sector)
	assert.Equal(t, model.Some(-2), q.DayChange)
	assert.False(t, q.EPS.Present)

	_, err = f.FetchQuote(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRESTFetchHistorySorted(t *testing.T) {
	t.Parallel()

	srv := restServer(t)
	f := collector.NewRESTFetcher(srv.URL, "", 0, collector.WithAPIKey("secret"))

	points, err := f.FetchHistory(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 100.0, points[0].Close)
	assert.Equal(t, 105.0, points[1].Close)
}

func TestRESTFetchIndicesSkipsUnknown(t *testing.T) {
	t.Parallel()

	srv := restServer(t)
	f := collector.NewRESTFetcher(srv.URL, "", 0, collector.WithAPIKey("secret"))

	quotes, err := f.FetchIndices(context.Background(), []model.Ticker{"AAPL", "ZZZ"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Contains(t, quotes, model.Ticker("AAPL"))
}

func TestRESTUnauthorized(t *testing.T) {
	t.Parallel()

	srv := restServer(t)
	f := collector.NewRESTFetcher(srv.URL, "", 0, collector.WithAPIKey("wrong"))

	_, err := f.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrTransport)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestRESTOversizedBodyRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"symbol":"AAPL","name":"%s"}`, strings.Repeat("x", 5<<20))
	}))
	t.Cleanup(srv.Close)
	f := collector.NewRESTFetcher(srv.URL, "", 0)

	_, err := f.FetchQuote(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "response body exceeds")
}
