package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stockcurve/internal/quote"
)

// Provider fetches daily price history for one symbol over [from, to).
// Implementations return one Quote per trading day, with NaN for fields the
// upstream reported as null.
type Provider interface {
	Source() string
	Quotes(ctx context.Context, symbol string, from, to time.Time) ([]quote.Quote, error)
}

type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Source()] = p
}

func (r *Registry) Get(source string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[source]
	if !ok {
		return nil, fmt.Errorf("provider not found for source: %s", source)
	}
	return p, nil
}

func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.providers))
	for src := range r.providers {
		sources = append(sources, src)
	}
	return sources
}
