package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/sheet"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/seeder"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/simulation"
	"github.com/simaogato/wealthflow-widgets/pkg/logger"
)

type simulateCmd struct {
	file    string
	path    string
	alloc   string
	from    int
	to      int
	jsonOut bool
	verbose bool

	out io.Writer
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate an allocation over spreadsheet returns" }
func (*simulateCmd) Usage() string {
	return `simulate -file <rows.json> -alloc <id=value,...> [-from <year> -to <year>] [-json]

  Runs a historical simulation offline, without a database:
  - file: spreadsheet JSON export holding the yearly returns
  - alloc: allocation summing to 100, e.g. uah-deposit=40,sp500=60
  - from, to: window of years; both omitted means every year any
    allocated instrument covers

  Columns that are not in the instrument catalogue are skipped.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Spreadsheet JSON export (required)")
	f.StringVar(&c.path, "path", sheet.DefaultRowsPath, "JSONPath expression selecting the rows")
	f.StringVar(&c.alloc, "alloc", "", "Allocation, e.g. uah-deposit=40,sp500=60 (required)")
	f.IntVar(&c.from, "from", 0, "First year of the window")
	f.IntVar(&c.to, "to", 0, "Last year of the window")
	f.BoolVar(&c.jsonOut, "json", false, "Print the full result as JSON")
	f.BoolVar(&c.verbose, "v", false, "Log skipped columns and instruments")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	if c.file == "" || c.alloc == "" {
		fmt.Fprintln(os.Stderr, "Error: -file and -alloc are required.")
		return subcommands.ExitUsageError
	}
	if (c.from == 0) != (c.to == 0) {
		fmt.Fprintln(os.Stderr, "Error: -from and -to go together.")
		return subcommands.ExitUsageError
	}

	set, err := parseAllocation(c.alloc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -alloc: %v\n", err)
		return subcommands.ExitUsageError
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})

	svc, err := loadOffline(ctx, c.file, c.path, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := svc.Simulate(ctx, simulation.SimulateInput{Allocation: set, StartYear: c.from, EndYear: c.to})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := printSimulation(out, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadOffline builds a simulation service over in-memory storage filled from a spreadsheet export
func loadOffline(ctx context.Context, file, rowsPath string, log zerolog.Logger) (*simulation.Service, error) {
	imported, err := sheet.NewImporter(rowsPath).ParseFile(file)
	if err != nil {
		return nil, err
	}

	instrumentRepo := memory.NewInstrumentRepository()
	seriesRepo := memory.NewReturnSeriesRepository()
	if _, err := seeder.NewCatalogSeeder(instrumentRepo).Seed(ctx); err != nil {
		return nil, err
	}

	known := make([]domain.ReturnSeries, 0, len(imported))
	for _, rs := range imported {
		if _, err := instrumentRepo.GetByID(ctx, rs.InstrumentID); err != nil {
			if errors.Is(err, domain.ErrInstrumentNotFound) {
				log.Warn().Str("column", rs.InstrumentID).Msg("Column skipped: not in the instrument catalogue")
				continue
			}
			return nil, err
		}
		known = append(known, rs)
	}

	if _, err := series.NewService(instrumentRepo, seriesRepo).ImportSeries(ctx, known); err != nil {
		return nil, err
	}

	cache := series.NewCache(seriesRepo, log)
	if err := cache.Refresh(ctx); err != nil {
		return nil, err
	}

	return simulation.NewService(instrumentRepo, cache.Lookup, log), nil
}

// printSimulation writes one line per year and the summary
func printSimulation(w io.Writer, result *simulation.SimulationResult) error {
	if len(result.Blended) == 0 {
		_, err := fmt.Fprintln(w, "no returns cover this allocation")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "year\treturn\tcumulative\t")
	for i, p := range result.Blended {
		fmt.Fprintf(tw, "%d\t%s%%\t%s%%\t\n",
			p.Year,
			p.Value.StringFixed(2),
			result.Portfolio[i].Value.Shift(2).StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := result.Summary
	fmt.Fprintf(w, "\n%d-%d, %d years\n", result.StartYear, result.EndYear, s.Years)
	fmt.Fprintf(w, "total        %s%%\n", s.TotalReturn.Shift(2).StringFixed(2))
	fmt.Fprintf(w, "annualized   %.2f%%\n", s.AnnualizedReturn*100)
	fmt.Fprintf(w, "volatility   %.2f%%\n", s.Volatility*100)
	fmt.Fprintf(w, "max drawdown %.2f%%\n", s.MaxDrawdown*100)
	if s.BestYear != nil && s.WorstYear != nil {
		fmt.Fprintf(w, "best year    %d (%s%%)\n", s.BestYear.Year, s.BestYear.Value.StringFixed(2))
		fmt.Fprintf(w, "worst year   %d (%s%%)\n", s.WorstYear.Year, s.WorstYear.Value.StringFixed(2))
	}
	for _, id := range result.Unknown {
		fmt.Fprintf(w, "ignored      %s (not in the catalogue)\n", id)
	}
	return nil
}
