package cli

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/subcommands"

	"stockcurve/internal/config"
	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
)

type quotesCmd struct {
	symbol  string
	start   string
	end     string
	source  string
	noCache bool
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "dump raw daily quotes as CSV" }
func (*quotesCmd) Usage() string {
	return `quotes -symbol AAPL [-start YYYY-MM-DD] [-end YYYY-MM-DD]

  Prints the daily close and adjusted-close history for one symbol.
`
}

func (c *quotesCmd) SetFlags(f *flag.FlagSet) {
	now := time.Now()
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.start, "start", now.AddDate(-1, 0, 0).Format(dateFormat), "start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", now.Format(dateFormat), "end date (YYYY-MM-DD, exclusive)")
	f.StringVar(&c.source, "source", string(quote.SourceYahoo), "price data source")
	f.BoolVar(&c.noCache, "no-cache", false, "skip the sqlite quote cache")
}

func (c *quotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required")
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}

	start, err := parseDate("start date", c.start)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	end, err := parseDate("end date", c.end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	deps, err := buildServices(cfg, !c.noCache)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer deps.close()

	quotes, err := deps.svc.History(ctx, normalize.HistoryRequest{
		Source:    quote.Source(c.source),
		Symbol:    c.symbol,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", failureTitle(err), err)
		return subcommands.ExitFailure
	}

	fmt.Println("Symbol,Date,Close,AdjClose,Source")
	for _, q := range quotes {
		fmt.Printf("%s,%s,%s,%s,%s\n",
			q.Symbol, q.Date.Format(dateFormat),
			csvFloat(q.Close), csvFloat(q.AdjClose), q.Source)
	}
	return subcommands.ExitSuccess
}

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
