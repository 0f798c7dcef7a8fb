package normalize

import (
	"strings"
	"time"

	"stockcurve/internal/apperror"
	"stockcurve/internal/quote"
	"stockcurve/internal/series"
)

type Request struct {
	Source    quote.Source
	Symbols   []string
	StartDate time.Time
	EndDate   time.Time
}

// Validate enforces the caller contract: a non-empty list of non-empty
// symbols and a start date. Date ordering is left to the provider, which
// determines what range comes back.
func (r Request) Validate() *apperror.AppError {
	if len(r.Symbols) == 0 {
		return apperror.New(apperror.Input, "at least one symbol is required")
	}
	for _, s := range r.Symbols {
		if strings.TrimSpace(s) == "" {
			return apperror.New(apperror.Input, "symbols must not be blank")
		}
	}
	if r.StartDate.IsZero() {
		return apperror.New(apperror.Input, "startDate is required")
	}
	return nil
}

type HistoryRequest struct {
	Source    quote.Source
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
}

func (r HistoryRequest) Validate() *apperror.AppError {
	if strings.TrimSpace(r.Symbol) == "" {
		return apperror.New(apperror.Input, "symbol is required")
	}
	if r.StartDate.IsZero() {
		return apperror.New(apperror.Input, "startDate is required")
	}
	return nil
}

// Result holds the normalized table: every column divided by its value on
// the last shared date, so the final row is exactly 1.0 per symbol.
type Result struct {
	Table *series.Table
	Field quote.Field
	// InitialValues is the first normalized row: the dollars needed at the
	// start of the range to end with $1.
	InitialValues map[string]float64
}

// Response is the wire shape of a Result.
type Response struct {
	Field         quote.Field          `json:"field"`
	Dates         []string             `json:"dates"`
	Series        map[string][]float64 `json:"series"`
	InitialValues map[string]float64   `json:"initialValues"`
}

func (r *Result) Response() *Response {
	dates := make([]string, r.Table.Len())
	for i, d := range r.Table.Dates() {
		dates[i] = d.Format(time.DateOnly)
	}
	cols := make(map[string][]float64, len(r.Table.Symbols()))
	for _, sym := range r.Table.Symbols() {
		cols[sym] = r.Table.Column(sym)
	}
	return &Response{
		Field:         r.Field,
		Dates:         dates,
		Series:        cols,
		InitialValues: r.InitialValues,
	}
}

// SplitSymbols resolves free-text symbol entry: comma-split, trimmed,
// uppercased, empties dropped, duplicates removed in order.
func SplitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}
