// Package watch persists the symbols and ranges users have requested, so the
// scheduled refresher can keep their cached history warm.
package watch

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

type Entry struct {
	Source    string
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	UpdatedAt time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record upserts one watchlist entry per (source, symbol), widening the
// start date and advancing the end date when a broader range is requested.
func (r *Repository) Record(ctx context.Context, source, symbol string, from, to time.Time) error {
	const query = `INSERT INTO watchlist (source, symbol, start_date, end_date, updated_at)
		VALUES (?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT (source, symbol) DO UPDATE SET
			start_date = min(start_date, excluded.start_date),
			end_date = max(end_date, excluded.end_date),
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, source, symbol,
		from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return fmt.Errorf("record watch entry: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	const query = `SELECT source, symbol, start_date, end_date, updated_at
		FROM watchlist ORDER BY source, symbol`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list watch entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startStr, endStr, updatedStr string
		if err := rows.Scan(&e.Source, &e.Symbol, &startStr, &endStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		e.StartDate, _ = time.Parse(dateFormat, startStr)
		e.EndDate, _ = time.Parse(dateFormat, endStr)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
