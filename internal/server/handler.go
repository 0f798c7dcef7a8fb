package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"stockcurve/internal/apperror"
	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
)

const dateFormat = "2006-01-02"

type handler struct {
	svc *normalize.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listSources(w http.ResponseWriter, _ *http.Request) {
	sources := h.svc.ListSources()
	writeJSON(w, http.StatusOK, sources)
}

func (h *handler) getNormalized(w http.ResponseWriter, r *http.Request) {
	symbols := normalize.SplitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	startDate, endDate, ok := parseDates(w, r)
	if !ok {
		return
	}

	req := normalize.Request{
		Source:    sourceParam(r),
		Symbols:   symbols,
		StartDate: startDate,
		EndDate:   endDate,
	}

	res, err := h.svc.Normalize(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeNormalizedCSV(w, res)
		return
	}

	writeJSON(w, http.StatusOK, res.Response())
}

func (h *handler) getQuotes(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))

	startDate, endDate, ok := parseDates(w, r)
	if !ok {
		return
	}

	req := normalize.HistoryRequest{
		Source:    sourceParam(r),
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
	}

	quotes, err := h.svc.History(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeQuotesCSV(w, quotes)
		return
	}

	writeJSON(w, http.StatusOK, quotes)
}

func sourceParam(r *http.Request) quote.Source {
	if v := r.URL.Query().Get("source"); v != "" {
		return quote.Source(v)
	}
	return quote.SourceYahoo
}

func parseDates(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	startStr := r.URL.Query().Get("startDate")
	if startStr == "" {
		writeError(w, http.StatusBadRequest, "startDate is required")
		return
	}
	start, err := time.Parse(dateFormat, startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate format, expected YYYY-MM-DD")
		return
	}

	if v := r.URL.Query().Get("endDate"); v != "" {
		end, err = time.Parse(dateFormat, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate format, expected YYYY-MM-DD")
			return
		}
	}

	return start, end, true
}

func writeAppError(w http.ResponseWriter, err error) {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		writeError(w, ae.HTTPStatus(), ae.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
