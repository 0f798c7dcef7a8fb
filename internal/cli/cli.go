// Package cli implements the stockcurve subcommands.
package cli

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"stockcurve/internal/config"
	"stockcurve/internal/normalize"
	"stockcurve/internal/platform/sqlite"
	"stockcurve/internal/provider"
	"stockcurve/internal/provider/alphavantage"
	"stockcurve/internal/provider/yahoo"
	quoterepo "stockcurve/internal/repository/quote"
	watchrepo "stockcurve/internal/repository/watch"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "")
	c.Register(&chartCmd{}, "")
	c.Register(&quotesCmd{}, "")
}

var configPath = flag.String("config", "stockcurve.yaml", "Path to the YAML config file")

const dateFormat = "2006-01-02"

func newRegistry(cfg *config.Config) *provider.Registry {
	registry := provider.NewRegistry()
	registry.Register(yahoo.New(yahoo.WithWorkers(cfg.Workers)))
	if cfg.AlphaVantageKey != "" {
		registry.Register(alphavantage.New(cfg.AlphaVantageKey))
	}
	return registry
}

// services wires a normalizer, optionally backed by the sqlite cache.
// close is a no-op when no database was opened.
type services struct {
	svc   *normalize.Service
	watch *watchrepo.Repository
	close func()
}

func buildServices(cfg *config.Config, withCache bool) (*services, error) {
	registry := newRegistry(cfg)

	if !withCache {
		return &services{
			svc:   normalize.NewService(registry, nil, nil, cfg.Workers),
			close: func() {},
		}, nil
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	watch := watchrepo.NewRepository(db.DB)
	svc := normalize.NewService(registry, quoterepo.NewRepository(db.DB), watch, cfg.Workers)

	return &services{
		svc:   svc,
		watch: watch,
		close: func() { _ = db.Close() },
	}, nil
}

func parseDate(name, v string) (time.Time, error) {
	d, err := time.Parse(dateFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, v)
	}
	return d, nil
}
