package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

func writeNormalizedCSV(w http.ResponseWriter, res *normalize.Result) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=normalized.csv")
	w.WriteHeader(http.StatusOK)

	symbols := res.Table.Symbols()
	_, _ = fmt.Fprintf(w, "Date,%s\n", strings.Join(symbols, ","))
	for i, d := range res.Table.Dates() {
		row := make([]string, len(symbols))
		for j, sym := range symbols {
			row[j] = fmt.Sprintf("%.6f", res.Table.At(i, sym))
		}
		_, _ = fmt.Fprintf(w, "%s,%s\n", d.Format(time.DateOnly), strings.Join(row, ","))
	}
}

func writeQuotesCSV(w http.ResponseWriter, quotes []quote.Quote) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=quotes.csv")
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintln(w, "Symbol,Date,Close,AdjClose,Source")
	for _, q := range quotes {
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%s,%s\n",
			q.Symbol,
			q.Date.Format(time.DateOnly),
			csvFloat(q.Close),
			csvFloat(q.AdjClose),
			q.Source,
		)
	}
}

// csvFloat renders a price, leaving the cell empty for missing values.
func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
