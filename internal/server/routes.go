package server

import (
	"net/http"

	"stockcurve/internal/normalize"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(svc *normalize.Service) http.Handler {
	return newMux(svc)
}

func newMux(svc *normalize.Service) http.Handler {
	h := &handler{svc: svc}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/sources", h.listSources)
	mux.HandleFunc("GET /api/v1/normalized", h.getNormalized)
	mux.HandleFunc("GET /api/v1/quotes/{symbol}", h.getQuotes)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
