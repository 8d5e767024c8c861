package mock

import (
	"context"

	"github.com/fwojciec/scrapesense"
)

var _ scrapesense.Suggester = (*Suggester)(nil)

// Suggester is a mock implementation of scrapesense.Suggester.
type Suggester struct {
	SuggestFn func(ctx context.Context, prompt string) (string, error)
}

func (s *Suggester) Suggest(ctx context.Context, prompt string) (string, error) {
	return s.SuggestFn(ctx, prompt)
}

var _ scrapesense.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of scrapesense.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(markup string) string
}

func (s *Sanitizer) Sanitize(markup string) string {
	return s.SanitizeFn(markup)
}

var _ scrapesense.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of scrapesense.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return c.CountTokensFn(ctx, text)
}
