package yahoo

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestServer returns a mock Yahoo Finance server that serves cookie, crumb,
// and chart endpoints, along with a Provider configured to use it.
func newTestServer(t *testing.T, chartData chartResponse) (*httptest.Server, *Provider) {
	t.Helper()

	mux := http.NewServeMux()

	// Cookie endpoint just sets a session cookie.
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "test-session"})
		w.WriteHeader(http.StatusOK)
	})

	// Crumb endpoint returns a fixed token.
	mux.HandleFunc("/crumb", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test-crumb-123"))
	})

	// Chart endpoint serves the provided chart data.
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("crumb") != "test-crumb-123" {
			t.Errorf("expected crumb=test-crumb-123, got %s", q.Get("crumb"))
		}
		if q.Get("interval") != "1d" {
			t.Errorf("expected interval=1d, got %s", q.Get("interval"))
		}
		_ = json.NewEncoder(w).Encode(chartData)
	})

	ts := httptest.NewServer(mux)

	p := New(
		WithWorkers(1),
		WithClient(ts.Client()),
		WithChartEndpoint(ts.URL+"/chart"),
		WithCookieURL(ts.URL+"/cookie"),
		WithCrumbURL(ts.URL+"/crumb"),
	)

	return ts, p
}

func chartData(timestamps []int64, closes, adjCloses []any) chartResponse {
	var resp chartResponse
	r := chartResult{Timestamp: timestamps}
	r.Indicators.Quote = []struct {
		Close []any `json:"close"`
	}{{Close: closes}}
	if adjCloses != nil {
		r.Indicators.AdjClose = []struct {
			AdjClose []any `json:"adjclose"`
		}{{AdjClose: adjCloses}}
	}
	resp.Chart.Result = []chartResult{r}
	return resp
}

func TestQuotes(t *testing.T) {
	resp := chartData(
		[]int64{1704153600, 1704240000},
		[]any{185.01, 184.25},
		[]any{184.50, 183.80},
	)

	ts, p := newTestServer(t, resp)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Close != 185.01 {
		t.Errorf("expected close 185.01, got %f", quotes[0].Close)
	}
	if quotes[0].AdjClose != 184.50 {
		t.Errorf("expected adjclose 184.50, got %f", quotes[0].AdjClose)
	}
	if quotes[1].AdjClose != 183.80 {
		t.Errorf("expected adjclose 183.80, got %f", quotes[1].AdjClose)
	}
}

func TestQuotes_MissingAdjCloseIndicator(t *testing.T) {
	resp := chartData(
		[]int64{1704153600, 1704240000},
		[]any{185.01, 184.25},
		nil,
	)

	ts, p := newTestServer(t, resp)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	for _, q := range quotes {
		if !math.IsNaN(q.AdjClose) {
			t.Errorf("expected NaN adjclose when indicator absent, got %f", q.AdjClose)
		}
	}
}

func TestQuotes_NullValues(t *testing.T) {
	resp := chartData(
		[]int64{1704153600, 1704240000, 1704326400},
		[]any{185.01, nil, 184.25},
		[]any{nil, nil, 183.80},
	)

	ts, p := newTestServer(t, resp)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The middle row is null for both fields and is dropped entirely; the
	// first row keeps a NaN adjclose.
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if !math.IsNaN(quotes[0].AdjClose) {
		t.Errorf("expected NaN adjclose on first row, got %f", quotes[0].AdjClose)
	}
	if quotes[1].Close != 184.25 || quotes[1].AdjClose != 183.80 {
		t.Errorf("unexpected last row: %+v", quotes[1])
	}
}

func TestQuotes_EmptyResult(t *testing.T) {
	ts, p := newTestServer(t, chartResponse{})
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "INVALID", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quotes != nil {
		t.Errorf("expected nil quotes, got %d", len(quotes))
	}
}

func TestQuotes_ChartErrorPropagates(t *testing.T) {
	resp := chartResponse{}
	resp.Chart.Error = &struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}{Code: "Not Found", Description: "No data found"}

	ts, p := newTestServer(t, resp)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	// A chart-level error fails the fetch; the normalizer turns it into a
	// data-fetch failure for the caller.
	if _, err := p.Quotes(context.Background(), "INVALID", from, to); err == nil {
		t.Fatal("expected error for chart-level failure")
	}
}

func TestQuotes_EmptySymbol(t *testing.T) {
	p := New()
	if _, err := p.Quotes(context.Background(), "", time.Now(), time.Now()); err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestSource(t *testing.T) {
	if got := New().Source(); got != "yahoo" {
		t.Errorf("expected source 'yahoo', got '%s'", got)
	}
}
