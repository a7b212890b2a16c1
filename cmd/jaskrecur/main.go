package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jaskrecur/internal/cache"
	"github.com/jask/jaskrecur/internal/config"
	"github.com/jask/jaskrecur/internal/database"
	"github.com/jask/jaskrecur/internal/database/repository"
	"github.com/jask/jaskrecur/internal/logging"
	"github.com/jask/jaskrecur/internal/projection"
	"github.com/jask/jaskrecur/internal/recurring"
	"github.com/jask/jaskrecur/internal/rules"
	"github.com/jask/jaskrecur/internal/service"
	"github.com/jask/jaskrecur/internal/testdata"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type app struct {
	cfg        config.Config
	recurring  *service.RecurringService
	projection *service.ProjectionService
	repos      testdata.Repos
	close      func()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "seed":
		err = runSeed(args)
	case "analyze":
		err = runAnalyze(args)
	case "detect":
		err = runDetect(args)
	case "confirm":
		err = runConfirm(args)
	case "autolink":
		err = runAutoLink(args)
	case "project":
		err = runProject(args)
	case "explain":
		err = runExplain(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jaskrecur <seed|analyze|detect|confirm|autolink|project|explain> [flags]")
}

func open() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db, "internal/database/migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c, err := cache.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}

	txRepo := repository.NewTransactionRepo(db)
	acctRepo := repository.NewAccountRepo(db)
	tplRepo := repository.NewTemplateRepo(db)
	ruleRepo := repository.NewRuleRepo(db)

	return &app{
		cfg: cfg,
		recurring: &service.RecurringService{
			DB: db, Transactions: txRepo, Templates: tplRepo, Rules: ruleRepo,
			Cache: c, Log: logger,
		},
		projection: &service.ProjectionService{
			Transactions: txRepo, Templates: tplRepo, Rules: ruleRepo,
			Cache: c, Log: logger,
		},
		repos: testdata.Repos{Accounts: acctRepo, Transactions: txRepo},
		close: func() { db.Close() },
	}, nil
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	if err := testdata.Seed(context.Background(), a.repos); err != nil {
		return err
	}
	accounts, err := a.repos.Accounts.List(context.Background())
	if err != nil {
		return err
	}
	for _, acct := range accounts {
		fmt.Printf("%s  %s\n", okStyle.Render(acct.ID), acct.Name)
	}
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	minOcc := fs.Int("min-occurrences", 2, "minimum occurrences per group")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" {
		return fmt.Errorf("-account is required")
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	txs, err := a.repos.Transactions.List(context.Background(), repository.TransactionFilters{AccountID: *account})
	if err != nil {
		return err
	}
	summaries := recurring.Analyze(txs, *minOcc)
	fmt.Println(headerStyle.Render("GROUP") + "  FREQ  AVG INTERVAL  COUNT")
	for _, s := range summaries {
		fmt.Printf("%-40s  %-9s  %6.1fd  %d\n", s.Description, s.Frequency, s.AvgIntervalDays, s.Occurrences)
	}
	return nil
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	minOcc := fs.Int("min-occurrences", 0, "override configured occurrence floor")
	threshold := fs.Float64("threshold", 0, "override configured confidence threshold")
	fuzzy := fs.Bool("fuzzy", false, "cluster by description similarity instead of exact key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" {
		return fmt.Errorf("-account is required")
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	det := detectorFromConfig(a.cfg)
	if *minOcc > 0 {
		det.MinOccurrences = *minOcc
	}
	if *threshold > 0 {
		det.ConfidenceThreshold = *threshold
	}
	if *fuzzy {
		det.SimilarityThreshold = a.cfg.Detection.SimilarityThreshold
	}

	proposals, err := a.recurring.DetectPatterns(context.Background(), *account, det)
	if err != nil {
		return err
	}
	printProposals(proposals)
	return nil
}

func runConfirm(args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	budget := fs.String("budget", "default", "budget id")
	index := fs.Int("index", -1, "proposal index from the detect listing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" || *index < 0 {
		return fmt.Errorf("-account and -index are required")
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	proposals, err := a.recurring.DetectPatterns(ctx, *account, detectorFromConfig(a.cfg))
	if err != nil {
		return err
	}
	if *index >= len(proposals) {
		return fmt.Errorf("index %d out of range, %d proposals", *index, len(proposals))
	}
	tpl, linked, err := a.recurring.ConfirmPattern(ctx, proposals[*index], *budget, *account, nil)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s), linked %d transactions\n",
		okStyle.Render("created"), tpl.ID, tpl.Description, linked)
	return nil
}

func runAutoLink(args []string) error {
	fs := flag.NewFlagSet("autolink", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" {
		return fmt.Errorf("-account is required")
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	linked, err := a.recurring.AutoLink(context.Background(), *account)
	if err != nil {
		return err
	}
	fmt.Printf("linked %d transactions\n", linked)
	return nil
}

func runProject(args []string) error {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	account := fs.String("account", "", "account id")
	from := fs.String("from", "", "window start (YYYY-MM-DD)")
	to := fs.String("to", "", "window end (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" || *from == "" || *to == "" {
		return fmt.Errorf("-account, -from and -to are required")
	}
	start, err := time.Parse(time.DateOnly, *from)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	end, err := time.Parse(time.DateOnly, *to)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	occs, err := a.projection.Calendar(context.Background(), *account, start, end)
	if err != nil {
		return err
	}
	fmt.Println(headerStyle.Render("DATE") + "        AMOUNT     DESCRIPTION")
	var total int64
	for _, o := range occs {
		marker := ""
		if o.DynamicAmount {
			marker = dimStyle.Render(" ~")
		}
		fmt.Printf("%s  %9s%s  %s\n", o.Date.Format(time.DateOnly), dollars(o.AmountCents), marker, o.Description)
		total += o.AmountCents
	}
	fmt.Printf("%d occurrences, net %s\n", len(occs), dollars(total))
	return nil
}

func runExplain(args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	transaction := fs.String("transaction", "", "transaction id")
	template := fs.String("template", "", "template id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *transaction == "" || *template == "" {
		return fmt.Errorf("-transaction and -template are required")
	}
	a, err := open()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	tx, err := a.repos.Transactions.Get(ctx, *transaction)
	if err != nil {
		return err
	}
	if tx == nil {
		return fmt.Errorf("transaction %s not found", *transaction)
	}
	tpl, err := a.recurring.Templates.Get(ctx, *template)
	if err != nil {
		return err
	}
	if tpl == nil {
		return fmt.Errorf("template %s not found", *template)
	}
	ruleset, err := a.recurring.Rules.ListByTemplate(ctx, *template)
	if err != nil {
		return err
	}
	for _, res := range rules.Explain(*tx, ruleset) {
		mark := badStyle.Render("✗")
		if res.Matched {
			mark = okStyle.Render("✓")
		}
		fmt.Printf("%s %s\n", mark, res.Reason)
	}

	if tpl.DynamicAmount {
		history, err := a.repos.Transactions.List(ctx, repository.TransactionFilters{AccountID: tpl.AccountID})
		if err != nil {
			return err
		}
		d := projection.Diagnose(*tpl, ruleset, history)
		fmt.Println(headerStyle.Render("dynamic amount"))
		fmt.Printf("estimate %s from %d matched transactions (mean %s, median %s)\n",
			dollars(d.EstimateCents), d.SampleSize, dollars(int64(d.MeanCents)), dollars(int64(d.MedianCents)))
		fmt.Printf("trend %s (%+.0f cents per occurrence)\n", d.Direction, d.SlopeCentsPerOccurrence)
		if len(d.OutlierIDs) > 0 {
			fmt.Printf("outliers: %v\n", d.OutlierIDs)
		}
	}
	return nil
}

func detectorFromConfig(cfg config.Config) recurring.Detector {
	return recurring.Detector{
		MinOccurrences:      cfg.Detection.MinOccurrences,
		ConfidenceThreshold: cfg.Detection.ConfidenceThreshold,
	}
}

func printProposals(proposals []recurring.Proposal) {
	fmt.Println(headerStyle.Render("#") + "  CONF  FREQ       AMOUNT     OCC  DESCRIPTION")
	for i, p := range proposals {
		amt := dollars(p.AmountCents)
		if p.DynamicAmount {
			amt += dimStyle.Render(" ~")
		}
		fmt.Printf("%d  %.2f  %-9s  %9s  %3d  %s\n",
			i, p.ConfidenceScore, p.Frequency, amt, p.Occurrences, p.NormalizedDescription)
	}
	if len(proposals) == 0 {
		fmt.Println(dimStyle.Render("no patterns above threshold"))
	}
}

func dollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
