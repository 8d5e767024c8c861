// Package rod implements scrapesense.Fetcher with headless Chrome via go-rod.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/scrapesense"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultFetchTimeout bounds a single fetch, browser start-up included.
const DefaultFetchTimeout = 60 * time.Second

// Ensure Fetcher implements scrapesense.Fetcher at compile time.
var _ scrapesense.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
//
// Every call to Fetch launches its own browser session and tears it down
// before returning, whether or not the fetch succeeded, so no browser
// process outlives a fetch.
type Fetcher struct {
	timeout     time.Duration
	renderDelay time.Duration
	bin         string
	stealth     bool
	closed      atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single fetch.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRenderDelay waits an extra d after the load event and DOM
// stabilisation, for pages that populate content asynchronously.
func WithRenderDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.renderDelay = d
	}
}

// WithBin sets the path of the Chrome binary instead of auto-detecting it.
func WithBin(path string) Option {
	return func(f *Fetcher) {
		f.bin = path
	}
}

// WithStealth toggles go-rod/stealth evasions on the page. Enabled by default.
func WithStealth(enabled bool) Option {
	return func(f *Fetcher) {
		f.stealth = enabled
	}
}

// NewFetcher creates a new Fetcher. No browser is started until Fetch.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		stealth: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to the URL and returns the rendered HTML.
// Local file URLs (file://) are supported.
func (f *Fetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	if f.closed.Load() {
		return "", scrapesense.Errorf(scrapesense.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	s, err := launch(ctx, f.bin)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil && ctx.Err() == nil {
			err = cerr
		}
	}()

	// s.browser carries ctx, so stealth setup and every page call below
	// stop at the deadline.
	page, err := f.newPage(s.browser)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if err := page.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		return "", err
	}

	if f.renderDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.renderDelay):
		}
	}

	return page.HTML()
}

func (f *Fetcher) newPage(b *rod.Browser) (*rod.Page, error) {
	if f.stealth {
		return stealth.Page(b)
	}
	return b.Page(proto.TargetCreateTarget{})
}

// Close marks the fetcher closed. Sessions are already released per fetch.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.closed.Store(true)
	return nil
}
