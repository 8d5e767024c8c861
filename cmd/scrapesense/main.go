package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/bluemonday"
	"github.com/fwojciec/scrapesense/fs"
	"github.com/fwojciec/scrapesense/gemini"
	"github.com/fwojciec/scrapesense/goquery"
	sshttp "github.com/fwojciec/scrapesense/http"
	"github.com/fwojciec/scrapesense/rod"
	"github.com/fwojciec/scrapesense/scrape"
	sslog "github.com/fwojciec/scrapesense/slog"
	"github.com/fwojciec/scrapesense/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); the --db flag overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	TargetService scrapesense.TargetService
	RunService    scrapesense.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapesense"),
		kong.Description("Scrape pages by CSS selector and repair broken selectors with Gemini."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapesense --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SCRAPESENSE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.TargetService = sslog.NewLoggingTargetService(sqlite.NewTargetService(m.DB), deps.Logger)
	m.RunService = sqlite.NewRunService(m.DB)
	deps.DB = m.DB
	deps.Targets = m.TargetService
	deps.Runs = m.RunService
	deps.Extractor = goquery.NewExtractor()

	switch cmd {
	case "run":
		fetcher := newFetcher(cli.Run.FetchFlags, deps.Logger)
		defer fetcher.Close()

		deps.Runner = &scrape.Runner{
			Targets:      deps.Targets,
			Fetcher:      fetcher,
			Extractor:    deps.Extractor,
			Runs:         deps.Runs,
			FetchTimeout: cli.Run.FetchTimeout,
			Logger:       deps.Logger,
		}
		if cli.Run.Snapshots != "" {
			deps.Runner.Snapshots = fs.NewSnapshotStore(cli.Run.Snapshots)
		}
		if !cli.Run.NoRepair {
			deps.Runner.Repairer = m.newRepairer(ctx, &cli.Run, deps, cli.Verbose)
		}

	case "extract":
		fetcher := newFetcher(cli.Extract.FetchFlags, deps.Logger)
		defer fetcher.Close()
		deps.Fetcher = fetcher
	}

	return kongCtx.Run(deps)
}

// newRepairer wires the Gemini suggester. Without an API key the repairer
// is still returned so broken fields are reported as repair failures.
// Loading the tokenizer downloads its vocabulary, so tokens are counted
// only when countTokens is set.
func (m *Main) newRepairer(ctx context.Context, c *RunCmd, deps *Dependencies, countTokens bool) *scrape.Repairer {
	client, err := gemini.NewClient(ctx, c.APIKey)
	switch {
	case errors.Is(err, gemini.ErrNoAPIKey):
		fmt.Fprintf(deps.Stderr, "warning: %s; broken selectors will not be repaired. Get a key at https://aistudio.google.com/apikey\n",
			scrapesense.ErrorMessage(err))
	case err != nil:
		fmt.Fprintf(deps.Stderr, "warning: %s; broken selectors will not be repaired\n", scrapesense.ErrorMessage(err))
	}

	var counter scrapesense.TokenCounter
	if client != nil && countTokens {
		if tc, err := gemini.NewTokenCounter(c.Model); err == nil {
			counter = tc
		} else {
			deps.Logger.Warn("token counter unavailable", "model", c.Model, "err", err)
		}
	}

	return &scrape.Repairer{
		Suggester:      sslog.NewLoggingSuggester(gemini.NewSuggester(client, c.Model), deps.Logger),
		Extractor:      deps.Extractor,
		Sanitizer:      bluemonday.NewSanitizer(),
		TokenCounter:   counter,
		ExcerptLimit:   c.ExcerptLimit,
		SuggestTimeout: c.SuggestTimeout,
		Logger:         deps.Logger,
	}
}

// newFetcher returns the static HTTP fetcher or the headless browser
// fetcher, wrapped with logging.
func newFetcher(f FetchFlags, logger *slog.Logger) scrapesense.Fetcher {
	var next scrapesense.Fetcher
	if f.Static {
		next = sshttp.NewFetcher(sshttp.WithTimeout(f.FetchTimeout))
	} else {
		next = rod.NewFetcher(rod.WithFetchTimeout(f.FetchTimeout), rod.WithBin(f.Browser))
	}
	return rod.NewLoggingFetcher(next, logger)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultDBPath() string {
	if path := os.Getenv("SCRAPESENSE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "scrapesense.db"
	}
	dir := filepath.Join(home, ".scrapesense")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "scrapesense.db")
}
