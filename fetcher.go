package scrapesense

import "context"

// Fetcher loads a page and returns its markup. A browser-backed fetcher
// returns the DOM after scripts ran; a plain HTTP fetcher returns the
// document as served.
type Fetcher interface {
	// Fetch returns the markup at url. ctx bounds the whole load.
	Fetch(ctx context.Context, url string) (markup string, err error)

	// Close releases browsers, connections or other held resources.
	Close() error
}
