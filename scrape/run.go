// Package scrape runs scrape targets: it fetches a target's page, extracts
// every field, repairs broken selectors and persists the outcome.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scrapesense"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds the page fetch of a run.
const DefaultFetchTimeout = 60 * time.Second

// Runner orchestrates a single run of a target.
type Runner struct {
	Targets   scrapesense.TargetService
	Fetcher   scrapesense.Fetcher
	Extractor scrapesense.Extractor

	// Repairer is invoked for broken fields. Nil disables repair and
	// broken fields are reported as not found.
	Repairer *Repairer

	// Runs, if set, receives a copy of every completed report.
	Runs scrapesense.RunService

	// Snapshots, if set, keeps the fetched markup of runs in which any
	// selector failed its first extraction.
	Snapshots scrapesense.SnapshotStore

	// FetchTimeout bounds the page fetch. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration

	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run loads the target, fetches its page, extracts and repairs every field
// in order, persists the updated target and returns the report.
//
// Only a missing target (ENOTFOUND) or a failed fetch (EFETCH) abort a run;
// field-level failures are recorded in the report.
func (r *Runner) Run(ctx context.Context, targetID string) (*scrapesense.RunReport, error) {
	stored, err := r.Targets.FindTargetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	target := stored.Clone()

	report := &scrapesense.RunReport{
		ID:        uuid.New().String(),
		TargetID:  target.ID,
		URL:       target.URL,
		StartedAt: r.now(),
	}

	markup, err := r.fetch(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	report.MarkupHash = computeHash(markup)

	broken := false
	for i := range target.Fields {
		fr := r.runField(ctx, target.ID, &target.Fields[i], markup)
		if !fr.Healthy() {
			broken = true
		}
		report.Fields = append(report.Fields, fr)
	}

	target.IsBroken = broken
	report.IsBroken = broken

	if err := r.Targets.UpsertTarget(ctx, target); err != nil {
		return nil, fmt.Errorf("persist target %q: %w", target.ID, err)
	}

	report.FinishedAt = r.now()

	if r.Runs != nil {
		if err := r.Runs.CreateRun(ctx, report); err != nil {
			r.logger().Warn("record run", "target", target.ID, "err", err)
		}
	}

	if r.Snapshots != nil && selectorFailed(report) {
		path, err := r.Snapshots.SaveSnapshot(ctx, report, markup)
		if err != nil {
			r.logger().Warn("save snapshot", "target", target.ID, "err", err)
		} else {
			r.logger().Info("saved snapshot", "target", target.ID, "path", path)
		}
	}

	return report, nil
}

// runField extracts one field and repairs it if broken. A validated
// suggestion replaces field.Selector in place.
func (r *Runner) runField(ctx context.Context, targetID string, field *scrapesense.Field, markup string) scrapesense.FieldReport {
	outcome := scrapesense.ExtractField(r.Extractor, *field, markup)
	fr := scrapesense.FieldReport{
		Name:     field.Name,
		Outcome:  outcome.Status,
		Selector: field.Selector,
	}

	if scrapesense.Classify(*field, outcome) == scrapesense.Healthy {
		fr.Status = scrapesense.FieldSuccess
		fr.Value = outcome.Text
		return fr
	}

	r.logger().Warn("broken selector",
		"target", targetID,
		"field", field.Name,
		"selector", field.Selector,
		"outcome", outcome.Status,
	)

	if r.Repairer == nil {
		fr.Status = scrapesense.FieldNotFound
		return fr
	}

	attempt := r.Repairer.Repair(ctx, targetID, *field, markup)
	fr.Attempt = attempt
	if !attempt.Validated {
		fr.Status = scrapesense.FieldRepairFailed
		fr.Diagnostic = scrapesense.ErrorMessage(attempt.Err)
		return fr
	}

	// Re-extract with the accepted selector so the report carries its value.
	repaired := *field
	repaired.Selector = attempt.Suggestion
	after := scrapesense.ExtractField(r.Extractor, repaired, markup)
	if scrapesense.Classify(repaired, after) != scrapesense.Healthy {
		fr.Status = scrapesense.FieldRepairFailed
		fr.Diagnostic = fmt.Sprintf("suggested selector %q did not extract on re-check", attempt.Suggestion)
		return fr
	}

	field.Selector = attempt.Suggestion
	fr.Status = scrapesense.FieldRepaired
	fr.Selector = field.Selector
	fr.Value = after.Text
	return fr
}

// fetch retrieves the page within FetchTimeout. Any error, a timeout, or
// blank markup is reported as EFETCH.
func (r *Runner) fetch(ctx context.Context, url string) (string, error) {
	timeout := r.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	markup, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", scrapesense.Errorf(scrapesense.EFETCH, "fetch %s: %v", url, err)
	}
	if strings.TrimSpace(markup) == "" {
		return "", scrapesense.Errorf(scrapesense.EFETCH, "fetch %s: empty page", url)
	}
	return markup, nil
}

// Result pairs a target ID with the outcome of its run.
type Result struct {
	TargetID string
	Report   *scrapesense.RunReport
	Err      error
}

// RunAll runs several targets with at most concurrency runs in flight.
// Each run works on its own fetched markup and its own copy of the target.
// Results are returned in the order of ids; a failed run does not stop
// the others.
func (r *Runner) RunAll(ctx context.Context, ids []string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			report, err := r.Run(gctx, id)
			results[i] = Result{TargetID: id, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func selectorFailed(report *scrapesense.RunReport) bool {
	for _, f := range report.Fields {
		if f.Outcome != scrapesense.StatusSuccess {
			return true
		}
	}
	return false
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}
