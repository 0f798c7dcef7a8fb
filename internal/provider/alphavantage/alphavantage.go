// Package alphavantage implements a provider for the Alpha Vantage
// TIME_SERIES_DAILY_ADJUSTED endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stockcurve/internal/quote"
)

const (
	defaultEndpoint = "https://www.alphavantage.co/query"
	dateFormat      = "2006-01-02"
)

type Provider struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		client:   http.DefaultClient,
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type Option func(*Provider)

func WithClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

func WithEndpoint(ep string) Option {
	return func(p *Provider) { p.endpoint = ep }
}

func (p *Provider) Source() string { return string(quote.SourceAlphaVantage) }

// dailyResponse is the subset of the TIME_SERIES_DAILY_ADJUSTED payload we
// consume. The series maps date strings to field-number keyed values.
type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// Quotes fetches daily close and adjusted-close prices for the given symbol
// and filters them to [from, to).
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
	if p.apiKey == "" {
		return nil, fmt.Errorf("alphavantage api key not configured")
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned HTTP %d for %s", res.StatusCode, symbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse alphavantage response: %w", err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error: %s", resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alphavantage throttled: %s", resp.Note)
	}

	quotes := make([]quote.Quote, 0, len(resp.TimeSeries))
	for dateStr, fields := range resp.TimeSeries {
		date, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			continue
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}
		quotes = append(quotes, quote.Quote{
			Source:   quote.SourceAlphaVantage,
			Symbol:   symbol,
			Date:     date,
			Close:    parseField(fields, "4. close"),
			AdjClose: parseField(fields, "5. adjusted close"),
		})
	}

	slog.Info("retrieved alphavantage data", "symbol", symbol,
		"from", from.Format(dateFormat), "to", to.Format(dateFormat),
		"count", len(quotes))

	return quotes, nil
}

func parseField(fields map[string]string, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
