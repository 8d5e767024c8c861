package main

import (
	"fmt"

	"github.com/fwojciec/scrapesense"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter scrapesense.TargetFilter
	if c.Broken {
		broken := true
		filter.IsBroken = &broken
	}

	targets, err := deps.Targets.FindTargets(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(deps.Stdout, "No targets found. Use 'scrapesense add' to create some.")
		return nil
	}

	for _, t := range targets {
		state := "ok"
		if t.IsBroken {
			state = "broken"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d fields\n", t.ID, t.URL, state, len(t.Fields))
	}

	return nil
}
