package render

import (
	"strings"
	"testing"
	"time"

	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
	"stockcurve/internal/series"
)

func sampleResult(t *testing.T) *normalize.Result {
	t.Helper()
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	quotes := map[string][]quote.Quote{
		"AAPL": {
			{Symbol: "AAPL", Date: d(1), Close: 50, AdjClose: 50},
			{Symbol: "AAPL", Date: d(2), Close: 75, AdjClose: 75},
			{Symbol: "AAPL", Date: d(3), Close: 100, AdjClose: 100},
		},
		"MSFT": {
			{Symbol: "MSFT", Date: d(1), Close: 20, AdjClose: 20},
			{Symbol: "MSFT", Date: d(2), Close: 18, AdjClose: 18},
			{Symbol: "MSFT", Date: d(3), Close: 25, AdjClose: 25},
		},
	}
	tbl := series.FromQuotes([]string{"AAPL", "MSFT"}, quotes, quote.FieldAdjClose).
		DropIncomplete().Normalize()
	return &normalize.Result{Table: tbl, Field: quote.FieldAdjClose, InitialValues: tbl.Row(0)}
}

func TestChart(t *testing.T) {
	out := Chart(sampleResult(t), 40, 10)

	if out == "" {
		t.Fatal("expected non-empty chart")
	}
	if !strings.Contains(out, "2024-01-01") || !strings.Contains(out, "2024-01-03") {
		t.Error("expected date range in the title and axis")
	}
	if !strings.Contains(out, "End Value = $1.00") {
		t.Error("expected axis caption")
	}
	for _, sym := range []string{"AAPL", "MSFT"} {
		if !strings.Contains(out, sym) {
			t.Errorf("expected legend entry for %s", sym)
		}
	}
	if lines := strings.Count(out, "\n"); lines < 10 {
		t.Errorf("expected at least 10 lines, got %d", lines)
	}
}

func TestChart_TooSmall(t *testing.T) {
	if out := Chart(sampleResult(t), 5, 1); out != "" {
		t.Errorf("expected empty output for degenerate size, got %q", out)
	}
}

func TestSummary(t *testing.T) {
	out := Summary(sampleResult(t))

	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "MSFT") {
		t.Error("expected both symbols in the summary")
	}
	if !strings.Contains(out, "$0.5000") {
		t.Errorf("expected AAPL initial value $0.5000, got:\n%s", out)
	}
	if !strings.Contains(out, "$0.8000") {
		t.Errorf("expected MSFT initial value $0.8000, got:\n%s", out)
	}
}
