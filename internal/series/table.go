// Package series implements the aligned price table that the normalizer
// operates on: an ascending date index with one float64 column per symbol,
// where missing observations are NaN.
package series

import (
	"math"
	"slices"
	"time"

	"stockcurve/internal/quote"
)

type Table struct {
	dates   []time.Time
	symbols []string
	columns map[string][]float64
}

// FromQuotes builds a table for one price field out of per-symbol quote
// slices. The date index is the union of all observed dates, sorted
// ascending; a symbol without an observation on a date gets NaN there.
// Symbol column order follows the symbols argument.
func FromQuotes(symbols []string, quotes map[string][]quote.Quote, field quote.Field) *Table {
	dateSet := make(map[time.Time]struct{})
	for _, qs := range quotes {
		for _, q := range qs {
			dateSet[q.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	columns := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, q := range quotes[sym] {
			col[index[q.Date]] = q.Value(field)
		}
		columns[sym] = col
	}

	return &Table{dates: dates, symbols: slices.Clone(symbols), columns: columns}
}

func (t *Table) Len() int           { return len(t.dates) }
func (t *Table) Dates() []time.Time { return t.dates }
func (t *Table) Symbols() []string  { return t.symbols }
func (t *Table) IsEmpty() bool      { return len(t.dates) == 0 }

// At returns the value for symbol at row i.
func (t *Table) At(i int, symbol string) float64 { return t.columns[symbol][i] }

// Column returns the full series for one symbol.
func (t *Table) Column(symbol string) []float64 { return t.columns[symbol] }

// Row returns all symbol values at row i.
func (t *Table) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(t.symbols))
	for _, sym := range t.symbols {
		row[sym] = t.columns[sym][i]
	}
	return row
}

// DropIncomplete returns a table containing only the rows where every
// symbol has an observation, preserving date order. Only fully-observed
// dates survive, so no NaN can reach a later division.
func (t *Table) DropIncomplete() *Table {
	keep := make([]int, 0, len(t.dates))
	for i := range t.dates {
		complete := true
		for _, sym := range t.symbols {
			if math.IsNaN(t.columns[sym][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	columns := make(map[string][]float64, len(t.symbols))
	for _, sym := range t.symbols {
		columns[sym] = make([]float64, len(keep))
	}
	for j, i := range keep {
		dates[j] = t.dates[i]
		for _, sym := range t.symbols {
			columns[sym][j] = t.columns[sym][i]
		}
	}

	return &Table{dates: dates, symbols: slices.Clone(t.symbols), columns: columns}
}

// Normalize divides every column by its value on the last date, so each
// symbol ends at exactly 1.0 (value divided by itself) and earlier rows
// hold the fraction of final worth. The receiver must be non-empty and
// fully observed; call DropIncomplete first.
func (t *Table) Normalize() *Table {
	last := len(t.dates) - 1
	columns := make(map[string][]float64, len(t.symbols))
	for _, sym := range t.symbols {
		final := t.columns[sym][last]
		col := make([]float64, len(t.dates))
		for i, v := range t.columns[sym] {
			col[i] = v / final
		}
		columns[sym] = col
	}
	return &Table{dates: slices.Clone(t.dates), symbols: slices.Clone(t.symbols), columns: columns}
}

// MinMax returns the smallest and largest values across all columns.
// Returns zeros for an empty table.
func (t *Table) MinMax() (lo, hi float64) {
	if t.IsEmpty() {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, sym := range t.symbols {
		for _, v := range t.columns[sym] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}
