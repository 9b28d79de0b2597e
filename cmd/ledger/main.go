package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"pocketledger/internal/config"
	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
	"pocketledger/internal/services"
)

const usage = `usage: ledger [-config file] <command> [flags]

commands:
  register        create an account
  categories      list categories
  add-entry       record an income or expense
  query           search entries
  stats           show statistics
  budget-add      create a budget
  budget-status   show spending against active budgets
  export          write entries or statistics to a file
  delete-account  remove the account and all of its data`

func main() {
	logger.Init(os.Getenv("LEDGER_ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", appErr.Code, appErr.Message)
			os.Exit(1)
		}
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

// app bundles the services one invocation needs.
type app struct {
	cfg        *config.Config
	out        io.Writer
	auth       services.AuthServicer
	entries    services.EntryServicer
	categories services.CategoryServicer
	budgets    services.BudgetServicer
	stats      services.StatsServicer
	export     services.ExportServicer
}

func run(args []string, out io.Writer) error {
	global := flag.NewFlagSet("ledger", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", os.Getenv("LEDGER_CONFIG"), "config file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if global.NArg() < 1 {
		return errors.New(usage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	models.PasswordCost = cfg.BcryptCost

	store, err := database.Open(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	audit := services.NewAuditService()
	stats := services.NewStatsService(store)
	a := &app{
		cfg:        cfg,
		out:        out,
		auth:       services.NewAuthService(store, audit),
		entries:    services.NewEntryService(store, audit, cfg.DefaultCurrency),
		categories: services.NewCategoryService(store, audit),
		budgets:    services.NewBudgetService(store, audit),
		stats:      stats,
		export:     services.NewExportService(store, stats),
	}

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "register":
		return a.register(rest)
	case "categories":
		return a.listCategories(rest)
	case "add-entry":
		return a.addEntry(rest)
	case "query":
		return a.query(rest)
	case "stats":
		return a.showStats(rest)
	case "budget-add":
		return a.addBudget(rest)
	case "budget-status":
		return a.budgetStatus(rest)
	case "export":
		return a.exportEntries(rest)
	case "delete-account":
		return a.deleteAccount(rest)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}
