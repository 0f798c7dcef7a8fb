package quote

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "stockcurve/internal/quote"
)

const dateFormat = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveQuotes inserts quotes, ignoring rows already present for the same
// (source, symbol, date). NaN fields are stored as NULL.
func (r *Repository) SaveQuotes(ctx context.Context, quotes []domain.Quote) (int64, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	const batchSize = 500
	var total int64

	for i := 0; i < len(quotes); i += batchSize {
		end := min(i+batchSize, len(quotes))
		batch := quotes[i:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*5)
		for j, q := range batch {
			placeholders[j] = "(?, ?, ?, ?, ?)"
			args = append(args, string(q.Source), q.Symbol, q.Date.Format(dateFormat),
				toNull(q.Close), toNull(q.AdjClose))
		}

		query := fmt.Sprintf(
			"INSERT OR IGNORE INTO quotes (source, symbol, date, close_price, adj_close) VALUES %s",
			strings.Join(placeholders, ", "),
		)

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("save quotes: %w", err)
		}

		n, _ := res.RowsAffected()
		total += n
	}

	return total, nil
}

func (r *Repository) ListQuotes(ctx context.Context, source domain.Source, symbol string, from, to time.Time) ([]domain.Quote, error) {
	const query = `SELECT id, source, symbol, date, close_price, adj_close, created_at
		FROM quotes
		WHERE source = ? AND symbol = ? AND date >= ? AND date < ?
		ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query,
		string(source), symbol,
		from.Format(dateFormat), to.Format(dateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		var src, dateStr, createdStr string
		var closePrice, adjClose sql.NullFloat64
		if err := rows.Scan(&q.ID, &src, &q.Symbol, &dateStr, &closePrice, &adjClose, &createdStr); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Source = domain.Source(src)
		q.Close = fromNull(closePrice)
		q.AdjClose = fromNull(adjClose)
		q.Date, _ = time.Parse(dateFormat, dateStr)
		q.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

func (r *Repository) ExistingDates(ctx context.Context, source domain.Source, symbol string, from, to time.Time) (map[time.Time]bool, error) {
	const query = `SELECT date FROM quotes
		WHERE source = ? AND symbol = ? AND date >= ? AND date < ?`

	rows, err := r.db.QueryContext(ctx, query,
		string(source), symbol,
		from.Format(dateFormat), to.Format(dateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("existing dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dates := make(map[time.Time]bool)
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		t, _ := time.Parse(dateFormat, dateStr)
		dates[t] = true
	}

	return dates, rows.Err()
}

func toNull(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
