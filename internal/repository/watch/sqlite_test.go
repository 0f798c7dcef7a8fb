package watch

import (
	"context"
	"testing"
	"time"

	"stockcurve/internal/platform/sqlite"
)

func TestRecord_WidensRange(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.DB)
	ctx := context.Background()

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.Record(ctx, "yahoo", "AAPL", feb, mar); err != nil {
		t.Fatal(err)
	}
	if err := repo.Record(ctx, "yahoo", "AAPL", jan, jun); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].StartDate.Equal(jan) || !entries[0].EndDate.Equal(jun) {
		t.Errorf("expected widened range %v..%v, got %v..%v", jan, jun,
			entries[0].StartDate, entries[0].EndDate)
	}
}
