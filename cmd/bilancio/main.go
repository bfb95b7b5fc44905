package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

const usage = `Usage: bilancio <command> [flags]

Commands:
  dashboard    Show balances for a reference date
  simulate     Project the day-by-day bank trajectory
  materialize  Generate this month's recurring transactions
  add          Record a transaction (optionally with a recurring rule)
  import       Replace all transactions from a JSON file
  export       Dump all transactions as JSON
  watch        Follow change events and reprint balances (needs AMQP)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	policy := cli.LoadPolicy(logger, cfg.PolicyFile)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing store-only", log.FieldError, err)
		} else {
			events = client
			defer events.Close()
		}
	}

	svc := services.NewBudgetService(repo, policy.Policy, policy.Pots, events)
	ctx := context.Background()

	if err := seedRules(ctx, repo, policy.SeedRules); err != nil {
		logger.Error("Failed to seed recurring rules", log.FieldError, err)
		os.Exit(1)
	}
	if err := seedOverrides(ctx, repo, policy.Overrides); err != nil {
		logger.Error("Failed to seed pot overrides", log.FieldError, err)
		os.Exit(1)
	}

	app := &application{svc: svc, cfg: cfg, events: events, logger: logger}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "dashboard":
		err = app.dashboard(ctx, os.Args[2:])
	case "simulate":
		err = app.simulate(ctx, os.Args[2:])
	case "materialize":
		err = app.materialize(ctx, os.Args[2:])
	case "add":
		err = app.add(ctx, os.Args[2:])
	case "import":
		err = app.importFile(ctx, os.Args[2:])
	case "export":
		err = app.export(ctx, os.Args[2:])
	case "watch":
		err = app.watch(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", log.FieldError, err)
		os.Exit(1)
	}
}

// seedRules inserts rules declared in the policy file, tolerating ones that
// already exist from a previous session.
func seedRules(ctx context.Context, store services.Store, rules []core.RecurringRule) error {
	for _, r := range rules {
		if err := store.AddRule(ctx, r); err != nil && !errors.Is(err, core.ErrDuplicateID) {
			return fmt.Errorf("seed rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func seedOverrides(ctx context.Context, store services.Store, overrides []core.PotOverride) error {
	for _, o := range overrides {
		if err := store.PutPotOverride(ctx, o); err != nil {
			return fmt.Errorf("seed override %s: %w", o.Category, err)
		}
	}
	return nil
}

type application struct {
	svc    *services.BudgetService
	cfg    *config.Config
	events *amqp.Client
	logger *log.Logger
}

// materializeNow brings the current month up to date before any read, so a
// freshly opened session always sees this month's obligations.
func (a *application) materializeNow(ctx context.Context, reference core.Date) error {
	report, err := a.svc.RunMaterialization(ctx, reference)
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	if report.Created > 0 || len(report.Failed) > 0 {
		a.logger.Info("Materialization pass finished",
			"created", report.Created,
			"skipped", report.Skipped,
			"failed", len(report.Failed))
	}
	return nil
}

func (a *application) dashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	mode := fs.String("mode", "actual", "balance mode: actual or forecast")
	dateFlag := fs.String("date", "", "reference date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reference, err := dateOrToday(*dateFlag)
	if err != nil {
		return err
	}
	balanceMode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	if err := a.materializeNow(ctx, reference); err != nil {
		return err
	}

	balances, err := a.svc.Balances(ctx, balanceMode, reference)
	if err != nil {
		return err
	}

	fmt.Printf("Balances (%s) as of %s\n", balanceMode, reference)
	fmt.Printf("  Bank:    %12s\n", balances.Bank)
	fmt.Printf("  Cash:    %12s\n", balances.Cash)
	fmt.Printf("  Month income:  %10s\n", balances.Income)
	fmt.Printf("  Month expense: %10s\n", balances.Expense)
	return nil
}

func (a *application) simulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	fromFlag := fs.String("from", "", "start date (YYYY-MM-DD, default today)")
	toFlag := fs.String("to", "", "end date (YYYY-MM-DD, default from + days)")
	days := fs.Int("days", a.cfg.ForecastDays, "projection length when -to is not given")
	if err := fs.Parse(args); err != nil {
		return err
	}

	today := core.DateOf(time.Now())
	from, err := dateOrToday(*fromFlag)
	if err != nil {
		return err
	}
	to := core.Date{Time: from.AddDate(0, 0, *days)}
	if *toFlag != "" {
		if to, err = core.ParseDate(*toFlag); err != nil {
			return err
		}
	}

	if err := a.materializeNow(ctx, today); err != nil {
		return err
	}

	series, err := a.svc.Forecast(ctx, from, to, today)
	if err != nil {
		return err
	}
	for _, p := range series {
		fmt.Printf("%s  %12s\n", p.Date, p.Balance)
	}
	if stable, ok := services.StablePositiveDate(series); ok {
		fmt.Printf("Stable non-negative from %s\n", stable)
	} else if len(series) > 0 {
		fmt.Println("Balance does not stabilize above zero within the window")
	}
	return nil
}

func (a *application) materialize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("materialize", flag.ExitOnError)
	dateFlag := fs.String("date", "", "reference date (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reference, err := dateOrToday(*dateFlag)
	if err != nil {
		return err
	}

	report, err := a.svc.RunMaterialization(ctx, reference)
	if err != nil {
		return err
	}
	fmt.Printf("Materialized %d, skipped %d, failed %d for %s\n",
		report.Created, report.Skipped, len(report.Failed), reference.Month())
	for _, f := range report.Failed {
		fmt.Printf("  rule %s: %v\n", f.RuleID, f.Err)
	}
	return nil
}

func (a *application) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	typ := fs.String("type", "expense", "income or expense")
	category := fs.String("category", "", "category name")
	account := fs.String("account", "bank", "bank or cash")
	status := fs.String("status", "completed", "pending or completed")
	dateFlag := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	note := fs.String("note", "", "free-form note")
	recurring := fs.Bool("recurring", false, "also create a monthly rule")
	day := fs.Int("day", 0, "rule day of month (default: day of -date)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	date, err := dateOrToday(*dateFlag)
	if err != nil {
		return err
	}

	t := core.Transaction{
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Type:     core.TransactionType(*typ),
		Category: *category,
		Account:  core.Account(*account),
		Status:   core.Status(*status),
		Note:     *note,
	}

	var rule *core.RecurringRule
	if *recurring {
		ruleDay := *day
		if ruleDay == 0 {
			ruleDay = date.Day()
		}
		rule = &core.RecurringRule{
			Type:       t.Type,
			Category:   t.Category,
			Amount:     t.Amount,
			Note:       t.Note,
			Account:    t.Account,
			DayOfMonth: ruleDay,
			Active:     true,
			Frequency:  core.Monthly,
		}
	}

	created, err := a.svc.AddTransaction(ctx, t, rule)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s %s %s on %s (%s)\n",
		created.Type, created.Amount, created.Category, created.Date, created.ID)
	if rule != nil {
		fmt.Printf("Recurring monthly on day %d (rule %s)\n", rule.DayOfMonth, rule.ID)
	}
	return nil
}

func (a *application) importFile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "JSON file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("import requires -file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}
	n, err := a.svc.Import(ctx, data)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d transactions\n", n)
	return nil
}

func (a *application) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	file := fs.String("file", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.svc.ExportJSON(ctx)
	if err != nil {
		return err
	}
	if *file == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*file, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *file, err)
	}
	fmt.Printf("Exported to %s\n", *file)
	return nil
}

// watch tails the change-event queue and reprints balances after every event,
// so a terminal can follow mutations made by another bilancio process.
func (a *application) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	mode := fs.String("mode", "actual", "balance mode: actual or forecast")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.events == nil {
		return errors.New("watch requires AMQP_URL to be configured")
	}
	balanceMode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = a.events.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		fmt.Printf("%s  %s %s\n", msg.Timestamp.Format(time.RFC3339), msg.Kind, msg.Ref)
		balances, err := a.svc.RefreshBalances(ctx, balanceMode, core.DateOf(time.Now()))
		if err != nil {
			return err
		}
		fmt.Printf("  Bank %s  Cash %s\n", balances.Bank, balances.Cash)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func dateOrToday(s string) (core.Date, error) {
	if s == "" {
		return core.DateOf(time.Now()), nil
	}
	return core.ParseDate(s)
}

func parseMode(s string) (core.Mode, error) {
	switch core.Mode(s) {
	case core.Actual, core.Forecast:
		return core.Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be actual or forecast", s)
	}
}
