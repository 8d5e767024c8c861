// Package http provides an HTTP-based implementation of scrapesense.Fetcher
// for static pages that don't require JavaScript rendering.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/scrapesense"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodyBytes is the largest response body accepted. Larger bodies
// fail the fetch.
const DefaultMaxBodyBytes = 10 << 20

// Ensure Fetcher implements scrapesense.Fetcher at compile time.
var _ scrapesense.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content with plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript. file:// URLs are
// served from the local filesystem.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes sets the largest response body accepted.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxBytes:  DefaultMaxBodyBytes,
		userAgent: "scrapesense/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// Fetch returns the body at url decoded to UTF-8. The encoding comes from
// the Content-Type header, a byte order mark or a <meta> charset, in that
// order. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %s for %s", resp.Status, url)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	// A truncated page would turn working selectors into misses.
	if int64(len(raw)) > f.maxBytes {
		return "", fmt.Errorf("body of %s exceeds %d bytes", url, f.maxBytes)
	}

	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to detect charset of %s: %w", url, err)
	}
	markup, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return string(markup), nil
}

// Close is a no-op; idle connections are left to the transport.
func (f *Fetcher) Close() error {
	return nil
}
