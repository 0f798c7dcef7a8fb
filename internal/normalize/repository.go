package normalize

import (
	"context"
	"time"

	"stockcurve/internal/quote"
)

// Repository is the optional read-through quote cache. A nil Repository
// makes the service fetch from the provider on every call.
type Repository interface {
	SaveQuotes(ctx context.Context, quotes []quote.Quote) (int64, error)
	ListQuotes(ctx context.Context, source quote.Source, symbol string, from, to time.Time) ([]quote.Quote, error)
	ExistingDates(ctx context.Context, source quote.Source, symbol string, from, to time.Time) (map[time.Time]bool, error)
}

// Watchlist records requested symbols for scheduled cache refresh.
type Watchlist interface {
	Record(ctx context.Context, source, symbol string, from, to time.Time) error
}
