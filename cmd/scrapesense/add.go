package main

import (
	"fmt"

	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/yaml"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	for _, path := range c.Files {
		targets, err := yaml.LoadTargets(path)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
			return err
		}

		for _, t := range targets {
			if err := c.save(deps, t); err != nil {
				fmt.Fprintf(deps.Stderr, "error: target %q: %s\n", t.ID, scrapesense.ErrorMessage(err))
				if scrapesense.ErrorCode(err) == scrapesense.EINVALID && !c.Force {
					fmt.Fprintln(deps.Stderr, "Hint: use --force to replace existing targets")
				}
				return err
			}
			fmt.Fprintf(deps.Stdout, "Added target %s (%d fields)\n", t.ID, len(t.Fields))
		}
	}
	return nil
}

func (c *AddCmd) save(deps *Dependencies, t *scrapesense.Target) error {
	if c.Force {
		return deps.Targets.UpsertTarget(deps.Ctx, t)
	}
	return deps.Targets.CreateTarget(deps.Ctx, t)
}
