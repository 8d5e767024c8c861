package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/scrapesense"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if _, err := deps.Targets.FindTargetByID(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, scrapesense.RunFilter{TargetID: &c.ID, Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(deps.Stdout, "No runs recorded for %s. Use 'scrapesense run %s'.\n", c.ID, c.ID)
		return nil
	}

	for _, r := range runs {
		state := "ok"
		if r.IsBroken {
			state = "broken"
		}
		line := fmt.Sprintf("%s  %s  %-6s  %s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.ID,
			state,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
		if repaired := r.Repaired(); len(repaired) > 0 {
			line += "  repaired: " + strings.Join(repaired, ", ")
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}
