package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"stockcurve/internal/apperror"
	"stockcurve/internal/config"
	"stockcurve/internal/normalize"
	"stockcurve/internal/quote"
	"stockcurve/internal/render"
)

type chartCmd struct {
	symbols string
	start   string
	end     string
	source  string
	width   int
	height  int
	noCache bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render a normalized performance chart" }
func (*chartCmd) Usage() string {
	return `chart [-symbols AAPL,MSFT] [-start YYYY-MM-DD] [-end YYYY-MM-DD]

  Fetches daily history, rescales each symbol so its value on the last
  shared trading day equals $1.00, and draws the curves in the terminal.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	now := time.Now()
	f.StringVar(&c.symbols, "symbols", "AAPL, MSFT, GOOG, VOO", "comma-separated ticker symbols")
	f.StringVar(&c.start, "start", now.AddDate(-5, 0, 0).Format(dateFormat), "start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", now.Format(dateFormat), "end date (YYYY-MM-DD, exclusive)")
	f.StringVar(&c.source, "source", string(quote.SourceYahoo), "price data source")
	f.IntVar(&c.width, "width", 72, "plot width in columns")
	f.IntVar(&c.height, "height", 18, "plot height in rows")
	f.BoolVar(&c.noCache, "no-cache", false, "skip the sqlite quote cache")
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}

	symbols := normalize.SplitSymbols(c.symbols)
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "please enter at least one valid stock symbol")
		return subcommands.ExitUsageError
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

	res, err := deps.svc.Normalize(ctx, normalize.Request{
		Source:    quote.Source(c.source),
		Symbols:   symbols,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", failureTitle(err), err)
		return subcommands.ExitFailure
	}

	fmt.Println(render.Chart(res, c.width, c.height))
	fmt.Println(render.Summary(res))
	return subcommands.ExitSuccess
}

// failureTitle maps the error taxonomy to the headline a user sees.
func failureTitle(err error) string {
	switch apperror.CodeOf(err) {
	case apperror.Input:
		return "input error"
	case apperror.DataFetch, apperror.NoData, apperror.FieldNotFound, apperror.NoOverlap:
		return "data fetch error"
	default:
		return "unexpected error"
	}
}
