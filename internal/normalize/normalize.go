// Package normalize implements the end-value normalization transform: each
// symbol's price history is rescaled so its value on the last shared trading
// day equals exactly 1.0, making "dollars needed then to end with $1"
// directly comparable across symbols.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"stockcurve/internal/apperror"
	"stockcurve/internal/provider"
	"stockcurve/internal/quote"
	"stockcurve/internal/series"
)

type Service struct {
	registry *provider.Registry
	repo     Repository
	watch    Watchlist
	workers  int
}

// NewService creates the normalizer. repo and watch may be nil, in which
// case every call fetches straight from the provider and nothing is
// watchlisted.
func NewService(registry *provider.Registry, repo Repository, watch Watchlist, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		registry: registry,
		repo:     repo,
		watch:    watch,
		workers:  workers,
	}
}

func (s *Service) ListSources() []string {
	return s.registry.Sources()
}

// Normalize fetches daily history for every requested symbol over
// [startDate, endDate), aligns the series on fully-observed dates, and
// divides each column by its final value. Failures carry an apperror code:
// INPUT before any fetch, DATA_FETCH for provider errors, NO_DATA for an
// empty result, FIELD_NOT_FOUND when no price field is usable, NO_OVERLAP
// when cleaning leaves nothing.
func (s *Service) Normalize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	endDate := req.EndDate
	if endDate.IsZero() {
		endDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	results := make([][]quote.Quote, len(req.Symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sym := range req.Symbols {
		g.Go(func() error {
			quotes, err := s.fetch(gctx, req.Source, sym, req.StartDate, endDate)
			if err != nil {
				return err
			}
			results[i] = quotes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.DataFetch, "fetch price history", err)
	}

	total := 0
	bySymbol := make(map[string][]quote.Quote, len(req.Symbols))
	for i, sym := range req.Symbols {
		bySymbol[sym] = results[i]
		total += len(results[i])
	}
	if total == 0 {
		return nil, apperror.New(apperror.NoData,
			"no data found for the symbols in the given period, check dates or symbols")
	}

	field, err := selectField(bySymbol)
	if err != nil {
		return nil, err
	}

	// Only fully-observed dates survive; the cleaned table, not the raw
	// one, feeds the division.
	table := series.FromQuotes(req.Symbols, bySymbol, field).DropIncomplete()
	if table.IsEmpty() {
		return nil, apperror.New(apperror.NoOverlap,
			"no overlapping data found for all symbols after cleaning")
	}

	normalized := table.Normalize()

	slog.Info("normalized price history",
		"symbols", len(req.Symbols), "rows", normalized.Len(), "field", string(field))

	return &Result{
		Table:         normalized,
		Field:         field,
		InitialValues: normalized.Row(0),
	}, nil
}

// History returns raw daily quotes for one symbol, reading through the
// cache when one is configured.
func (s *Service) History(ctx context.Context, req HistoryRequest) ([]quote.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	endDate := req.EndDate
	if endDate.IsZero() {
		endDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	return s.fetch(ctx, req.Source, req.Symbol, req.StartDate, endDate)
}

func (s *Service) fetch(ctx context.Context, source quote.Source, symbol string, from, to time.Time) ([]quote.Quote, error) {
	p, err := s.registry.Get(string(source))
	if err != nil {
		return nil, apperror.Wrap(apperror.Input, "unknown price source", err)
	}

	if s.watch != nil {
		if err := s.watch.Record(ctx, string(source), symbol, from, to); err != nil {
			slog.Error("record watch entry", "symbol", symbol, "error", err)
		}
	}

	if s.repo == nil {
		quotes, err := p.Quotes(ctx, symbol, from, to)
		if err != nil {
			return nil, apperror.Wrap(apperror.DataFetch,
				fmt.Sprintf("fetch %s from %s", symbol, source), err)
		}
		return quotes, nil
	}

	existing, err := s.repo.ExistingDates(ctx, source, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("check existing dates: %w", err)
	}

	// Rough coverage heuristic: weekdays in range vs cached dates. Below
	// the threshold we go upstream and fill the gaps.
	totalDays := countWeekdays(from, to)
	coverage := float64(len(existing)) / float64(max(totalDays, 1))

	if coverage <= 0.8 || len(existing) == 0 {
		scraped, fetchErr := p.Quotes(ctx, symbol, from, to)
		if fetchErr != nil {
			return nil, apperror.Wrap(apperror.DataFetch,
				fmt.Sprintf("fetch %s from %s", symbol, source), fetchErr)
		}

		fresh := make([]quote.Quote, 0, len(scraped))
		for _, q := range scraped {
			if existing[q.Date] {
				continue
			}
			fresh = append(fresh, q)
		}

		n, saveErr := s.repo.SaveQuotes(ctx, fresh)
		if saveErr != nil {
			return nil, fmt.Errorf("save quotes: %w", saveErr)
		}
		slog.Info("cached quotes", "source", source, "symbol", symbol,
			"new", n, "total_fetched", len(scraped))
	}

	quotes, err := s.repo.ListQuotes(ctx, source, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

// selectField is the ordered capability check over the response shape:
// prefer the adjusted-close field, fall back to plain close, and fail when
// neither carries a usable value anywhere.
func selectField(bySymbol map[string][]quote.Quote) (quote.Field, error) {
	for _, f := range []quote.Field{quote.FieldAdjClose, quote.FieldClose} {
		for _, quotes := range bySymbol {
			for _, q := range quotes {
				if !quote.Missing(q.Value(f)) {
					return f, nil
				}
			}
		}
	}
	return "", apperror.New(apperror.FieldNotFound,
		"cannot find adjusted or close price fields in provider response")
}

func countWeekdays(from, to time.Time) int {
	count := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}
