package alphavantage

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"
)

const dailyPayload = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-01-02": {"4. close": "185.64", "5. adjusted close": "184.90"},
		"2024-01-03": {"4. close": "184.25", "5. adjusted close": "183.52"},
		"2024-02-01": {"4. close": "186.86", "5. adjusted close": "186.10"}
	}
}`

func newTestServer(t *testing.T, payload string) (*httptest.Server, *Provider) {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "TIME_SERIES_DAILY_ADJUSTED" {
			t.Errorf("unexpected function %s", q.Get("function"))
		}
		if q.Get("apikey") != "test-key" {
			t.Errorf("unexpected apikey %s", q.Get("apikey"))
		}
		_, _ = w.Write([]byte(payload))
	}))

	p := New("test-key", WithClient(ts.Client()), WithEndpoint(ts.URL))
	return ts, p
}

func TestQuotes_FiltersToRange(t *testing.T) {
	ts, p := newTestServer(t, dailyPayload)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2024-02-01 falls on the exclusive upper bound and must be excluded.
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Date.Before(quotes[j].Date) })
	if quotes[0].Close != 185.64 || quotes[0].AdjClose != 184.90 {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
}

func TestQuotes_MissingAdjustedField(t *testing.T) {
	payload := `{"Time Series (Daily)": {"2024-01-02": {"4. close": "185.64"}}}`
	ts, p := newTestServer(t, payload)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	quotes, err := p.Quotes(context.Background(), "AAPL", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	if !math.IsNaN(quotes[0].AdjClose) {
		t.Errorf("expected NaN adjclose, got %f", quotes[0].AdjClose)
	}
}

func TestQuotes_UpstreamError(t *testing.T) {
	payload := `{"Error Message": "Invalid API call."}`
	ts, p := newTestServer(t, payload)
	defer ts.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := p.Quotes(context.Background(), "BOGUS", from, to); err == nil {
		t.Fatal("expected error for upstream error message")
	}
}

func TestQuotes_NoAPIKey(t *testing.T) {
	p := New("")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := p.Quotes(context.Background(), "AAPL", from, time.Now()); err == nil {
		t.Fatal("expected error when api key is missing")
	}
}
