package main

import (
	"fmt"

	"github.com/fwojciec/scrapesense"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	t, err := deps.Targets.FindTargetByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	state := "ok"
	if t.IsBroken {
		state = "broken"
	}
	fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", t.ID, t.URL, state)
	fmt.Fprintf(deps.Stdout, "updated %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, f := range t.Fields {
		selector := f.Selector
		if !f.HasSelector() {
			selector = "(none)"
		}
		fmt.Fprintf(deps.Stdout, "  %-20s %s\n", f.Name, selector)
		if f.Description != "" {
			fmt.Fprintf(deps.Stdout, "  %-20s %s\n", "", f.Description)
		}
	}

	return nil
}
