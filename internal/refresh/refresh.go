// Package refresh keeps the quote cache warm: on a cron schedule it
// re-fetches history for every watchlisted symbol, so interactive requests
// are mostly served from sqlite.
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
	"stockcurve/internal/repository/watch"
)

type Refresher struct {
	cron  *cron.Cron
	svc   *normalize.Service
	watch *watch.Repository
	ctx   context.Context
}

// New schedules a refresh of all watchlisted symbols using the given cron
// spec (standard 5-field format).
func New(ctx context.Context, svc *normalize.Service, watchRepo *watch.Repository, spec string) (*Refresher, error) {
	r := &Refresher{
		cron:  cron.New(),
		svc:   svc,
		watch: watchRepo,
		ctx:   ctx,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
	slog.Info("cache refresher started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	slog.Info("cache refresher stopped")
}

func (r *Refresher) run() {
	entries, err := r.watch.List(r.ctx)
	if err != nil {
		slog.Error("refresh: list watchlist", "error", err)
		return
	}

	refreshed := 0
	for _, e := range entries {
		if r.ctx.Err() != nil {
			return
		}
		// Advance the window to today so new trading days get cached.
		end := time.Now().UTC().Truncate(24 * time.Hour)
		_, err := r.svc.History(r.ctx, normalize.HistoryRequest{
			Source:    quote.Source(e.Source),
			Symbol:    e.Symbol,
			StartDate: e.StartDate,
			EndDate:   end,
		})
		if err != nil {
			slog.Error("refresh: fetch history", "source", e.Source, "symbol", e.Symbol, "error", err)
			continue
		}
		refreshed++
	}

	slog.Info("cache refresh complete", "symbols", refreshed, "watchlist", len(entries))
}
