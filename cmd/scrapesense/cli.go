package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/scrape"
	"github.com/fwojciec/scrapesense/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	DB        *sqlite.DB
	Targets   scrapesense.TargetService
	Runs      scrapesense.RunService
	Fetcher   scrapesense.Fetcher
	Extractor scrapesense.Extractor
	Runner    *scrape.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" type:"path" help:"SQLite database path (defaults to $SCRAPESENSE_DB or ~/.scrapesense/scrapesense.db)"`
	Verbose bool   `short:"v" help:"Log fetches, suggestions and store writes to stderr"`

	Add     AddCmd     `cmd:"" help:"Add targets from a YAML file"`
	Run     RunCmd     `cmd:"" help:"Scrape targets and repair broken selectors"`
	Extract ExtractCmd `cmd:"" help:"Extract text from a URL with a CSS selector"`
	List    ListCmd    `cmd:"" help:"List all targets"`
	Show    ShowCmd    `cmd:"" help:"Show a target's fields and selectors"`
	History HistoryCmd `cmd:"" help:"Show recent runs of a target"`
}

// FetchFlags configures page fetching.
type FetchFlags struct {
	Static       bool          `help:"Fetch raw HTML over HTTP instead of rendering in Chrome"`
	FetchTimeout time.Duration `default:"60s" help:"Page fetch timeout"`
	Browser      string        `env:"SCRAPESENSE_BROWSER" help:"Path to the Chrome binary (auto-detected if empty)"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Files []string `arg:"" help:"YAML files with a top-level 'targets' list"`
	Force bool     `short:"f" help:"Replace targets that already exist"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	IDs         []string `arg:"" optional:"" name:"id" help:"Target IDs to run"`
	All         bool     `short:"a" help:"Run every stored target"`
	Concurrency int      `short:"c" default:"1" help:"Targets run concurrently"`
	JSON        bool     `help:"Print reports as JSON"`
	Snapshots   string   `type:"path" env:"SCRAPESENSE_SNAPSHOTS" help:"Directory for page snapshots of runs with failing selectors"`

	FetchFlags `embed:""`

	NoRepair       bool          `help:"Report broken selectors without asking Gemini for a replacement"`
	APIKey         string        `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model          string        `env:"SCRAPESENSE_MODEL" default:"gemini-2.5-flash" help:"Gemini model used for repairs"`
	SuggestTimeout time.Duration `default:"30s" help:"Timeout for a single Gemini call"`
	ExcerptLimit   int           `default:"12000" help:"Characters of page markup sent to Gemini"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL      string `arg:"" help:"Page URL (http, https or file)"`
	Selector string `arg:"" help:"CSS selector"`

	FetchFlags `embed:""`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Broken bool `help:"Only list broken targets"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Target ID"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	ID    string `arg:"" help:"Target ID"`
	Limit int    `short:"n" default:"10" help:"Number of runs to show"`
}
