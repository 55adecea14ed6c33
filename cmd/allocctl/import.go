package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/sheet"
	"github.com/simaogato/wealthflow-widgets/internal/config"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/seeder"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/pkg/logger"
)

type importCmd struct {
	file string
	path string

	out io.Writer
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import yearly returns from a spreadsheet JSON export" }
func (*importCmd) Usage() string {
	return `import -file <rows.json> [-path <jsonpath>]

  Loads yearly returns into the reference database configured by the
  server environment (DB_CONN_STR or DB_HOST/DB_PORT/...).
  Rows are selected with a JSONPath expression; each row has a "year"
  column and one column per instrument id. Existing years are replaced.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Spreadsheet JSON export (required)")
	f.StringVar(&c.path, "path", sheet.DefaultRowsPath, "JSONPath expression selecting the rows")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required.")
		return subcommands.ExitUsageError
	}

	imported, err := sheet.NewImporter(c.path).ParseFile(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", c.file, err)
		return subcommands.ExitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Storage != config.StoragePostgres {
		fmt.Fprintln(os.Stderr, "Error: import needs STORAGE=postgres; in-memory storage does not outlive the command.")
		return subcommands.ExitUsageError
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing schema: %v\n", err)
		return subcommands.ExitFailure
	}

	instrumentRepo := postgres.NewInstrumentRepository(db)
	if _, err := seeder.NewCatalogSeeder(instrumentRepo).Seed(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding catalogue: %v\n", err)
		return subcommands.ExitFailure
	}

	svc := series.NewService(instrumentRepo, postgres.NewReturnSeriesRepository(db))
	recorded, err := svc.ImportSeries(ctx, imported)
	if err != nil {
		log.Error().Err(err).Int("recorded", recorded).Msg("Import stopped")
		return subcommands.ExitFailure
	}

	fmt.Fprintf(out, "imported %d yearly returns for %d instruments from %s\n", recorded, len(imported), c.file)
	return subcommands.ExitSuccess
}
