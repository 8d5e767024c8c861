package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/scrape"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	ids := c.IDs
	if c.All {
		targets, err := deps.Targets.FindTargets(deps.Ctx, scrapesense.TargetFilter{})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
			return err
		}
		ids = nil
		for _, t := range targets {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		if c.All {
			fmt.Fprintln(deps.Stdout, "No targets found. Use 'scrapesense add' to create some.")
			return nil
		}
		err := scrapesense.Errorf(scrapesense.EINVALID, "no target IDs given; pass IDs or --all")
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	results := deps.Runner.RunAll(deps.Ctx, ids, c.Concurrency)

	if c.JSON {
		if err := writeJSON(deps.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printResult(deps.Stdout, r)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}

func printResult(w io.Writer, r scrape.Result) {
	if r.Err != nil {
		fmt.Fprintf(w, "%s  error: %s\n", r.TargetID, scrapesense.ErrorMessage(r.Err))
		return
	}

	state := "ok"
	if r.Report.IsBroken {
		state = "broken"
	}
	fmt.Fprintf(w, "%s  %s  %s\n", r.TargetID, r.Report.URL, state)

	for _, f := range r.Report.Fields {
		selector := f.Selector
		if selector == "" {
			selector = "(none)"
		}
		switch f.Status {
		case scrapesense.FieldSuccess, scrapesense.FieldRepaired:
			fmt.Fprintf(w, "  %-20s %-13s %s  %q\n", f.Name, f.Status, selector, f.Value)
		case scrapesense.FieldRepairFailed:
			fmt.Fprintf(w, "  %-20s %-13s %s  %s\n", f.Name, f.Status, selector, f.Diagnostic)
		default:
			fmt.Fprintf(w, "  %-20s %-13s %s\n", f.Name, f.Status, selector)
		}
	}
}

type jsonResult struct {
	TargetID string                 `json:"targetId"`
	Report   *scrapesense.RunReport `json:"report,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func writeJSON(w io.Writer, results []scrape.Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{TargetID: r.TargetID, Report: r.Report}
		if r.Err != nil {
			out[i].Error = scrapesense.ErrorMessage(r.Err)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
