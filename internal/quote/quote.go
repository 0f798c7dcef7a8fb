package quote

import (
	"encoding/json"
	"math"
	"time"
)

type Source string

const (
	SourceYahoo        Source = "yahoo"
	SourceAlphaVantage Source = "alphavantage"
)

// Field identifies a price column in a provider response. Adjusted close is
// preferred for total-return comparison; plain close is the fallback.
type Field string

const (
	FieldAdjClose Field = "adjclose"
	FieldClose    Field = "close"
)

// Quote is one daily observation. Close and AdjClose are NaN when the
// provider reported no value for that field on that date.
type Quote struct {
	ID        int64     `json:"id"`
	Source    Source    `json:"source"`
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	AdjClose  float64   `json:"adjClose"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON emits null for NaN fields, since JSON has no NaN literal.
func (q Quote) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        int64     `json:"id"`
		Source    Source    `json:"source"`
		Symbol    string    `json:"symbol"`
		Date      time.Time `json:"date"`
		Close     *float64  `json:"close"`
		AdjClose  *float64  `json:"adjClose"`
		CreatedAt time.Time `json:"createdAt"`
	}
	w := wire{
		ID: q.ID, Source: q.Source, Symbol: q.Symbol,
		Date: q.Date, CreatedAt: q.CreatedAt,
	}
	if !math.IsNaN(q.Close) {
		w.Close = &q.Close
	}
	if !math.IsNaN(q.AdjClose) {
		w.AdjClose = &q.AdjClose
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores null fields to NaN.
func (q *Quote) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID        int64     `json:"id"`
		Source    Source    `json:"source"`
		Symbol    string    `json:"symbol"`
		Date      time.Time `json:"date"`
		Close     *float64  `json:"close"`
		AdjClose  *float64  `json:"adjClose"`
		CreatedAt time.Time `json:"createdAt"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q.ID, q.Source, q.Symbol, q.Date, q.CreatedAt = w.ID, w.Source, w.Symbol, w.Date, w.CreatedAt
	q.Close, q.AdjClose = math.NaN(), math.NaN()
	if w.Close != nil {
		q.Close = *w.Close
	}
	if w.AdjClose != nil {
		q.AdjClose = *w.AdjClose
	}
	return nil
}

// Value returns the observation for the given field.
func (q Quote) Value(f Field) float64 {
	if f == FieldAdjClose {
		return q.AdjClose
	}
	return q.Close
}

// Missing reports whether no value is present, i.e. the observation is NaN.
func Missing(v float64) bool { return math.IsNaN(v) }
