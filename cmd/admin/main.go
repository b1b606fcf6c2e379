package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"findash/internal/domain/export"
	"findash/internal/domain/reporting"
	"findash/internal/infrastructure/postgres"
	"findash/internal/infrastructure/store"
	"findash/internal/shared/config"
	"findash/internal/shared/logger"
)

const defaultWorkers = 4

const usage = `findash admin CLI - management commands for the findash API

Usage:
  admin <command> [options]

Commands:
  migrate   Apply, roll back or inspect Postgres schema migrations
  report    Print a report for one user as JSON
  export    Write one CSV export per user into a directory

Examples:
  # Apply all pending migrations
  admin migrate

  # Roll back the last migration
  admin migrate --down=1

  # Monthly report for user 1
  admin report --user-id=1 --kind=monthly --year=2024 --month=1

  # Export every user's transactions with 8 workers
  admin export --all --out=./exports --workers=8
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	log := logger.New(os.Getenv("LOG_LEVEL"), true)

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate(os.Args[2:], log)
	case "report":
		runReport(os.Args[2:], log)
	case "export":
		runExport(os.Args[2:], log)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runMigrate(args []string, log zerolog.Logger) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Int("down", 0, "Roll back this many migrations instead of applying")
	version := fs.Bool("version", false, "Print the current migration version and exit")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(log)
	url := cfg.Database.URL()

	switch {
	case *version:
		v, dirty, err := postgres.MigrationVersion(url)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read migration version")
		}
		fmt.Printf("version %d (dirty: %v)\n", v, dirty)
	case *down > 0:
		if err := postgres.MigrateDown(url, *down); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		log.Info().Int("steps", *down).Msg("migrations rolled back")
	default:
		if err := postgres.Migrate(url); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations applied")
	}
}

func runReport(args []string, log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)

	userID := fs.Int64("user-id", 0, "User ID to report on")
	kind := fs.String("kind", "monthly", "Report kind: monthly, yearly, trends or income-expense")
	year := fs.Int("year", time.Now().Year(), "Calendar year (monthly, yearly)")
	month := fs.Int("month", int(time.Now().Month()), "Calendar month (monthly)")
	months := fs.Int("months", 0, "Trailing window in months (trends, income-expense)")
	timeoutStr := fs.String("timeout", "1m", "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin report [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *userID <= 0 {
		fmt.Println("Error: must specify --user-id")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timeout format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := loadConfig(log)
	st := openStore(ctx, cfg, log)
	defer st.Close(context.Background())

	engine := reporting.NewEngine(st.Transactions, cfg.Reporting.Location)

	var result any
	switch *kind {
	case "monthly":
		result, err = engine.Monthly(ctx, *userID, *year, *month)
	case "yearly":
		result, err = engine.Yearly(ctx, *userID, *year)
	case "trends":
		result, err = engine.Trends(ctx, *userID, orDefault(*months, reporting.DefaultTrendMonths))
	case "income-expense":
		result, err = engine.IncomeExpense(ctx, *userID, orDefault(*months, reporting.DefaultIncomeExpenseMonths))
	default:
		log.Fatal().Str("kind", *kind).Msg("unknown report kind")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("report failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
}

func runExport(args []string, log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to export (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Export every user")
	outDir := fs.String("out", ".", "Directory to write the CSV files into")
	fieldsStr := fs.String("fields", "", "Comma-separated export fields (default: the default selection)")
	workers := fs.Int("workers", defaultWorkers, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin export [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin export --user-id=1 --out=./exports")
		fmt.Println("  admin export --user-id=1,2,3 --fields=date,amount,category")
		fmt.Println("  admin export --all --workers=8 --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timeout format")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := loadConfig(log)
	st := openStore(ctx, cfg, log)
	defer st.Close(context.Background())

	var userIDs []int64
	if *allUsers {
		users, err := st.Users.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list users")
		}
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
		log.Info().Int("users", len(userIDs)).Msg("found users")
	} else {
		userIDs, err = parseUserIDs(*userIDStr)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid --user-id")
		}
	}

	if len(userIDs) == 0 {
		log.Info().Msg("no users to process")
		return
	}

	fields := export.DefaultFields()
	if *fieldsStr != "" {
		fields = nil
		for _, f := range strings.Split(*fieldsStr, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, export.Field(f))
			}
		}
	}

	projector := export.NewProjector(st.Transactions, cfg.Reporting.Location, cfg.Export.DateLayout)
	now := time.Now()

	log.Info().Int("users", len(userIDs)).Int("workers", *workers).Msg("starting export")
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, id := range userIDs {
		g.Go(func() error {
			path := filepath.Join(*outDir, export.Filename("user-"+strconv.FormatInt(id, 10), now))
			rows, err := exportUser(gctx, projector, id, fields, path)
			if err != nil {
				return fmt.Errorf("user %d: %w", id, err)
			}
			log.Info().Int64("user_id", id).Int("rows", rows).Str("file", path).Msg("exported")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}

	log.Info().Dur("elapsed", time.Since(startTime)).Msg("export completed")
}

// exportUser writes one user's CSV to path. Users without transactions get
// no file.
func exportUser(ctx context.Context, projector *export.Projector, userID int64, fields []export.Field, path string) (int, error) {
	proj, err := projector.Build(ctx, userID, export.Request{Fields: fields})
	if err != nil {
		return 0, err
	}
	if proj.Empty() {
		return 0, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := export.WriteCSV(f, proj); err != nil {
		f.Close()
		return 0, err
	}
	return len(proj.Rows), f.Close()
}

func loadConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	return cfg
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) *store.Store {
	// Schema changes only go through "admin migrate".
	cfg.Database.MigrateOnStart = false

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	return st
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
