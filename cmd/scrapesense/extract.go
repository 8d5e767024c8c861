package main

import (
	"fmt"

	"github.com/fwojciec/scrapesense"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	markup, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: fetch %s: %v\n", c.URL, err)
		return err
	}

	text, err := deps.Extractor.Extract(markup, c.Selector)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapesense.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, text)
	return nil
}
