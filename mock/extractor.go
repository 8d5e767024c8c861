package mock

import "github.com/fwojciec/scrapesense"

var _ scrapesense.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of scrapesense.Extractor.
type Extractor struct {
	ExtractFn func(markup, selector string) (string, error)
}

func (e *Extractor) Extract(markup, selector string) (string, error) {
	return e.ExtractFn(markup, selector)
}
