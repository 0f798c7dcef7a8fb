// Package yahoo implements a provider for Yahoo Finance historical price
// data. It uses the v8 chart API with cookie + crumb authentication,
// matching the approach used by the yfinance Python library, and requests
// the adjclose indicator so total-return comparisons are valid.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stockcurve/internal/provider"
	"stockcurve/internal/quote"
)

const (
	defaultChartEndpoint = "https://query2.finance.yahoo.com/v8/finance/chart"
	defaultCookieURL     = "https://fc.yahoo.com"
	defaultCrumbURL      = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	dateFormat           = "2006-01-02"
	chunkDays            = 1250
	userAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Provider fetches historical price data from Yahoo Finance.
type Provider struct {
	workers       int
	client        *http.Client
	chartEndpoint string
	cookieURL     string
	crumbURL      string

	mu    sync.Mutex
	crumb string
}

// New creates a Provider with the given options applied.
func New(opts ...Option) *Provider {
	jar, _ := cookiejar.New(nil)
	p := &Provider{
		workers:       5,
		client:        &http.Client{Jar: jar},
		chartEndpoint: defaultChartEndpoint,
		cookieURL:     defaultCookieURL,
		crumbURL:      defaultCrumbURL,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Option configures a Provider.
type Option func(*Provider)

// WithWorkers sets the worker concurrency for parallel chunk fetching.
func WithWorkers(n int) Option {
	return func(p *Provider) { p.workers = n }
}

// WithClient sets the HTTP client. The client should have a cookie jar.
func WithClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithChartEndpoint overrides the default chart API endpoint.
func WithChartEndpoint(ep string) Option {
	return func(p *Provider) { p.chartEndpoint = ep }
}

// WithCookieURL overrides the URL used to obtain the session cookie.
func WithCookieURL(u string) Option {
	return func(p *Provider) { p.cookieURL = u }
}

// WithCrumbURL overrides the URL used to obtain the crumb token.
func WithCrumbURL(u string) Option {
	return func(p *Provider) { p.crumbURL = u }
}

// Source returns the provider identifier.
func (p *Provider) Source() string { return string(quote.SourceYahoo) }

// chartResponse represents the Yahoo Finance v8 chart API response.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []any `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []any `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Quotes fetches daily close and adjusted-close prices for the given symbol
// over [from, to). A failed chunk fails the whole fetch; the caller decides
// how to surface it.
func (p *Provider) Quotes(ctx context.Context, symbol string, from, to time.Time) ([]quote.Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if from.IsZero() {
		return nil, fmt.Errorf("start date cannot be empty")
	}
	if to.IsZero() {
		to = time.Now()
	}
	if from.After(to) {
		return nil, fmt.Errorf("start date cannot be after end date")
	}

	// Ensure we have a valid crumb before starting parallel fetches.
	if err := p.ensureCrumb(ctx); err != nil {
		return nil, fmt.Errorf("yahoo auth: %w", err)
	}

	chunks := provider.SplitDateRange(from, to, chunkDays)
	results := make([][]quote.Quote, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, c := range chunks {
		g.Go(func() error {
			quotes, err := p.fetchChart(ctx, symbol, c.From, c.To)
			if err != nil {
				return fmt.Errorf("yahoo %s %s..%s: %w", symbol,
					c.From.Format(dateFormat), c.To.Format(dateFormat), err)
			}
			results[i] = quotes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []quote.Quote
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// ensureCrumb fetches a session cookie and crumb token if not already cached.
func (p *Provider) ensureCrumb(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.crumb != "" {
		return nil
	}

	// Step 1: GET fc.yahoo.com to obtain a session cookie.
	cookieReq, err := http.NewRequestWithContext(ctx, "GET", p.cookieURL, nil)
	if err != nil {
		return fmt.Errorf("build cookie request: %w", err)
	}
	cookieReq.Header.Set("User-Agent", userAgent)

	cookieRes, err := p.client.Do(cookieReq)
	if err != nil {
		return fmt.Errorf("fetch cookie: %w", err)
	}
	_ = cookieRes.Body.Close()

	// Step 2: GET crumb endpoint (cookie is sent automatically via jar).
	crumbReq, err := http.NewRequestWithContext(ctx, "GET", p.crumbURL, nil)
	if err != nil {
		return fmt.Errorf("build crumb request: %w", err)
	}
	crumbReq.Header.Set("User-Agent", userAgent)

	crumbRes, err := p.client.Do(crumbReq)
	if err != nil {
		return fmt.Errorf("fetch crumb: %w", err)
	}
	defer func() { _ = crumbRes.Body.Close() }()

	if crumbRes.StatusCode != http.StatusOK {
		return fmt.Errorf("crumb endpoint returned HTTP %d", crumbRes.StatusCode)
	}

	body, err := io.ReadAll(crumbRes.Body)
	if err != nil {
		return fmt.Errorf("read crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return fmt.Errorf("empty crumb received")
	}

	p.crumb = crumb
	slog.Info("yahoo: obtained crumb", "crumb_len", len(crumb))
	return nil
}

// fetchChart fetches chart data for a single date range chunk.
func (p *Provider) fetchChart(ctx context.Context, symbol string, from, to time.Time) ([]quote.Quote, error) {
	p.mu.Lock()
	crumb := p.crumb
	p.mu.Unlock()

	reqURL := fmt.Sprintf("%s/%s?period1=%s&period2=%s&interval=1d&events=div%%2Csplits&crumb=%s",
		p.chartEndpoint,
		symbol,
		strconv.FormatInt(from.Unix(), 10),
		strconv.FormatInt(to.Unix(), 10),
		crumb,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		// Invalidate crumb on auth errors so the next fetch retries auth.
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			p.mu.Lock()
			p.crumb = ""
			p.mu.Unlock()
		}
		return nil, fmt.Errorf("yahoo returned HTTP %d for %s", res.StatusCode, symbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo response: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	closes := result.Indicators.Quote[0].Close
	var adjCloses []any
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	n := min(len(result.Timestamp), len(closes))
	quotes := make([]quote.Quote, 0, n)
	for i := range n {
		closeVal := toFloat64(closes[i])
		adjVal := math.NaN()
		if i < len(adjCloses) {
			adjVal = toFloat64(adjCloses[i])
		}
		// A row where Yahoo reported null for both fields carries nothing.
		if math.IsNaN(closeVal) && math.IsNaN(adjVal) {
			continue
		}
		date := time.Unix(result.Timestamp[i], 0).UTC().Truncate(24 * time.Hour)
		quotes = append(quotes, quote.Quote{
			Source:   quote.SourceYahoo,
			Symbol:   symbol,
			Date:     date,
			Close:    closeVal,
			AdjClose: adjVal,
		})
	}

	slog.Info("retrieved yahoo data", "symbol", symbol,
		"from", from.Format(dateFormat), "to", to.Format(dateFormat),
		"count", len(quotes))

	return quotes, nil
}

// toFloat64 converts a JSON number (float64 or json.Number) to float64.
// Returns NaN for nil values (Yahoo uses null for missing data points).
func toFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
