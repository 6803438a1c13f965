package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sysweather/internal/advisor"
	"sysweather/internal/archive"
	"sysweather/internal/collector"
	"sysweather/internal/config"
	"sysweather/internal/history"
	"sysweather/internal/mcpserver"
	"sysweather/internal/output"
	"sysweather/internal/store"
	"sysweather/ui/console"
	"sysweather/ui/tui"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "monitor":
		err = runMonitor(args)
	case "analyze":
		err = runAnalyze(args)
	case "optimize":
		err = runOptimize(args)
	case "profile":
		err = runProfile(args)
	case "weather":
		err = runWeather(args)
	case "mcp":
		err = runMCP(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sysweather: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `sysweather - environment telemetry with a weather report

Usage:
  sysweather monitor  [-interval N] [-verbose]   live dashboard
  sysweather analyze  [-depth quick|standard|deep] [-json]
  sysweather optimize [-focus cpu|memory|network|productivity] [-apply 1,2]
  sysweather profile  create <name> [-focus X] | list | apply <name>
  sysweather weather  [-forecast]
  sysweather mcp [-reset-graph]                  run the MCP server on stdio

Config file: ~/.sysweather/config.yaml
`)
}

// env assembles the shared runtime pieces every command needs.
type env struct {
	cfg      config.Config
	store    *store.Store
	provider *collector.SystemCollector
	engine   *advisor.Engine
	logger   *slog.Logger
}

func setup(verbose bool) (*env, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	dir := cfg.StateDir
	if dir == "" {
		dir, err = store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
	}
	st, err := store.New(dir, logger)
	if err != nil {
		return nil, err
	}

	collectorCfg := cfg.Collector()
	if err := collectorCfg.Validate(); err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		store:    st,
		provider: collector.NewSystemCollector(collectorCfg),
		engine:   advisor.NewEngine(),
		logger:   logger,
	}, nil
}

func (e *env) openArchive(ctx context.Context) (*archive.Repo, func(), error) {
	path := e.cfg.Archive.Path
	if path == "" {
		path = filepath.Join(e.store.Dir(), "archive.duckdb")
	}
	client, err := archive.NewClient(path,
		archive.WithThreads(e.cfg.Archive.Threads),
		archive.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	repo, err := archive.NewRepo(ctx, client, hostname)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return repo, func() { _ = client.Close() }, nil
}

func (e *env) recordScore(score int, focus advisor.Focus) {
	appCtx := e.store.LoadContext()
	appCtx.RecordScore(store.ScoreRecord{At: time.Now(), Score: score, Focus: string(focus)})
	if err := e.store.SaveContext(appCtx); err != nil {
		e.logger.Warn("failed to save context", "error", err)
	}
}

func runMonitor(args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	interval := fs.Int("interval", 0, "sample interval in seconds (overrides config)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var intervalSet bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "interval" {
			intervalSet = true
		}
	})
	if intervalSet && *interval <= 0 {
		return fmt.Errorf("invalid interval: %d (must be positive)", *interval)
	}

	e, err := setup(*verbose)
	if err != nil {
		return err
	}

	d := time.Duration(e.cfg.SampleIntervalSeconds) * time.Second
	if *interval > 0 {
		d = time.Duration(*interval) * time.Second
	}

	hist := e.store.LoadHistory(e.cfg.HistoryCapacity)
	defer func() {
		if err := e.store.SaveHistory(hist); err != nil {
			e.logger.Warn("failed to save history", "error", err)
		}
	}()

	return tui.Start(e.provider, hist, e.engine, d)
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	depth := fs.String("depth", "standard", "analysis depth: quick, standard, or deep")
	asJSON := fs.Bool("json", false, "emit the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch *depth {
	case "quick", "standard", "deep":
	default:
		return fmt.Errorf("unknown depth: %s (want quick, standard, or deep)", *depth)
	}

	e, err := setup(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var hist *history.Rolling
	if *depth == "quick" {
		hist = history.NewRolling(e.cfg.HistoryCapacity)
	} else {
		hist = e.store.LoadHistory(e.cfg.HistoryCapacity)
	}

	report, err := output.RunOnce(ctx, e.provider, hist, e.engine, advisor.FocusAll)
	if err != nil {
		return err
	}

	if *depth != "quick" {
		if err := e.store.SaveHistory(hist); err != nil {
			e.logger.Warn("failed to save history", "error", err)
		}
		e.recordScore(report.Analysis.Score, advisor.FocusAll)
	}

	if *depth == "deep" && e.cfg.Archive.Enabled {
		repo, closeArchive, err := e.openArchive(ctx)
		if err != nil {
			e.logger.Warn("archive unavailable", "error", err)
		} else {
			defer closeArchive()
			if _, err := repo.Insert(ctx, &report.Sample, report.Weather); err != nil {
				e.logger.Warn("archive insert failed", "error", err)
			}
			if n, err := repo.Count(ctx); err == nil {
				fmt.Printf("archive: %d samples recorded\n", n)
			}
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	console.Print(os.Stdout, report)
	return nil
}

func runOptimize(args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	focusArg := fs.String("focus", "", "restrict analysis: cpu, memory, network, or productivity")
	applyArg := fs.String("apply", "", "comma-separated suggestion numbers to execute")
	if err := fs.Parse(args); err != nil {
		return err
	}

	focus, err := advisor.ParseFocus(*focusArg)
	if err != nil {
		return err
	}

	e, err := setup(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hist := e.store.LoadHistory(e.cfg.HistoryCapacity)
	report, err := output.RunOnce(ctx, e.provider, hist, e.engine, focus)
	if err != nil {
		return err
	}
	if err := e.store.SaveHistory(hist); err != nil {
		e.logger.Warn("failed to save history", "error", err)
	}
	e.recordScore(report.Analysis.Score, focus)

	if *applyArg == "" {
		console.Print(os.Stdout, report)
		return nil
	}

	selected, err := selectSuggestions(report.Analysis.Suggestions, *applyArg)
	if err != nil {
		return err
	}
	results := advisor.Apply(ctx, selected)
	console.PrintApplyResults(os.Stdout, results)
	return nil
}

// selectSuggestions resolves 1-based indices from the -apply flag.
func selectSuggestions(all []advisor.Suggestion, spec string) ([]advisor.Suggestion, error) {
	var selected []advisor.Suggestion
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(all) {
			return nil, fmt.Errorf("invalid suggestion number: %s (have %d suggestions)", part, len(all))
		}
		selected = append(selected, all[n-1])
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no suggestions selected")
	}
	return selected, nil
}

func runProfile(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: profile create <name> [-focus X] | list | apply <name>")
	}
	sub := args[0]

	e, err := setup(false)
	if err != nil {
		return err
	}

	switch sub {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: profile create <name> [-focus X]")
		}
		name := args[1]
		fs := flag.NewFlagSet("profile create", flag.ExitOnError)
		focusArg := fs.String("focus", "", "analysis focus captured in the profile")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		focus, err := advisor.ParseFocus(*focusArg)
		if err != nil {
			return err
		}
		return createProfile(e, name, focus)

	case "list":
		profiles := e.store.ListProfiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles saved.")
			return nil
		}
		for _, p := range profiles {
			applied := "never applied"
			if !p.AppliedAt.IsZero() {
				applied = "applied " + p.AppliedAt.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-20s focus=%-12s %d suggestions, %s\n", p.Name, p.Focus, len(p.Suggestions), applied)
		}
		return nil

	case "apply":
		if len(args) < 2 {
			return fmt.Errorf("usage: profile apply <name>")
		}
		return applyProfile(e, args[1])
	}
	return fmt.Errorf("unknown profile subcommand: %s", sub)
}

func createProfile(e *env, name string, focus advisor.Focus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hist := e.store.LoadHistory(e.cfg.HistoryCapacity)
	report, err := output.RunOnce(ctx, e.provider, hist, e.engine, focus)
	if err != nil {
		return err
	}

	p := store.Profile{
		Name:        name,
		Focus:       string(focus),
		CreatedAt:   time.Now(),
		Suggestions: report.Analysis.Suggestions,
	}
	if err := e.store.SaveProfile(p); err != nil {
		return err
	}
	fmt.Printf("Profile %q saved with %d suggestions.\n", name, len(p.Suggestions))
	console.PrintSuggestions(os.Stdout, p.Suggestions)
	return nil
}

func applyProfile(e *env, name string) error {
	p, err := e.store.GetProfile(name)
	if err != nil {
		return err
	}

	var automatable []advisor.Suggestion
	for _, s := range p.Suggestions {
		if s.Automatable && s.RemedyCommand != "" {
			automatable = append(automatable, s)
		}
	}
	if len(automatable) == 0 {
		fmt.Printf("Profile %q has no automatable suggestions.\n", name)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	results := advisor.Apply(ctx, automatable)
	console.PrintApplyResults(os.Stdout, results)
	return e.store.MarkApplied(name, time.Now())
}

func runWeather(args []string) error {
	fs := flag.NewFlagSet("weather", flag.ExitOnError)
	forecast := fs.Bool("forecast", false, "include metric trends")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hist := e.store.LoadHistory(e.cfg.HistoryCapacity)
	report, err := output.RunOnce(ctx, e.provider, hist, e.engine, advisor.FocusAll)
	if err != nil {
		return err
	}
	if err := e.store.SaveHistory(hist); err != nil {
		e.logger.Warn("failed to save history", "error", err)
	}
	e.recordScore(report.Analysis.Score, advisor.FocusAll)

	console.Print(os.Stdout, report)
	if *forecast {
		console.PrintTrends(os.Stdout, map[string]history.Trend{
			"cpu":    hist.Trend(history.CPUUsage, 5),
			"memory": hist.Trend(history.MemoryUsage, 5),
		})
	}
	return nil
}

func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "enable debug logging")
	resetGraph := fs.Bool("reset-graph", false, "wipe the Neo4j session graph before serving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var repo *archive.Repo
	if e.cfg.Archive.Enabled {
		r, closeArchive, err := e.openArchive(ctx)
		if err != nil {
			e.logger.Warn("archive unavailable", "error", err)
		} else {
			repo = r
			defer closeArchive()
		}
	}

	hist := e.store.LoadHistory(e.cfg.HistoryCapacity)
	srv, err := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "sysweather",
		ServerVersion: version,
		GeminiAPIKey:  e.cfg.Gemini.APIKey,
		GeminiModel:   e.cfg.Gemini.Model,
		Neo4jURI:      e.cfg.Graph.URI,
		Neo4jUser:     e.cfg.Graph.User,
		Neo4jPassword: e.cfg.Graph.Password,
		Neo4jDatabase: e.cfg.Graph.Database,
		ResetGraph:    *resetGraph,
	}, e.provider, hist, e.engine, repo)
	if err != nil {
		return err
	}
	defer func() {
		_ = srv.Close(context.Background())
		if err := e.store.SaveHistory(hist); err != nil {
			e.logger.Warn("failed to save history", "error", err)
		}
	}()

	return srv.Start(ctx)
}
