package scrape_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/goquery"
	"github.com/fwojciec/scrapesense/mock"
	"github.com/fwojciec/scrapesense/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renamedTitlePage = `<html><body><h2 class="title">Widget Pro</h2><span class="price">$19.99</span></body></html>`

func titleField() scrapesense.Field {
	return scrapesense.Field{
		Name:        "product_title",
		Description: "The main H1 title of the product",
		Selector:    "h1",
	}
}

func replying(reply string) *mock.Suggester {
	return &mock.Suggester{
		SuggestFn: func(context.Context, string) (string, error) {
			return reply, nil
		},
	}
}

func TestRepairer_Repair(t *testing.T) {
	t.Parallel()

	t.Run("validates a suggestion that extracts text", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("h2.title"),
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.True(t, attempt.Validated)
		assert.Equal(t, "h2.title", attempt.Suggestion)
		assert.Equal(t, "product_title", attempt.FieldName)
		assert.Equal(t, 1, attempt.Attempts)
		assert.NoError(t, attempt.Err)
	})

	t.Run("normalizes a fenced reply", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("```css\nh2.title\n```"),
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.True(t, attempt.Validated)
		assert.Equal(t, "h2.title", attempt.Suggestion)
	})

	t.Run("prompt carries description, selector and excerpt", func(t *testing.T) {
		t.Parallel()

		var got string
		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(_ context.Context, prompt string) (string, error) {
					got = prompt
					return "h2.title", nil
				},
			},
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.Equal(t, attempt.Prompt, got)
		assert.Contains(t, got, "The main H1 title of the product")
		assert.Contains(t, got, "Current selector: h1")
		assert.Contains(t, got, `<h2 class="title">Widget Pro</h2>`)
	})

	t.Run("caps the excerpt at ExcerptLimit", func(t *testing.T) {
		t.Parallel()

		markup := renamedTitlePage + strings.Repeat("<p>filler</p>", 1000)
		r := &scrape.Repairer{
			Suggester:    replying("h2.title"),
			Extractor:    goquery.NewExtractor(),
			ExcerptLimit: 20,
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), markup)

		assert.NotContains(t, attempt.Prompt, "filler")
		assert.Contains(t, attempt.Prompt, markup[:20])
	})

	t.Run("reports EUNAVAILABLE when the model fails", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(context.Context, string) (string, error) {
					return "", errors.New("503 service unavailable")
				},
			},
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Empty(t, attempt.Suggestion)
		assert.Equal(t, scrapesense.EUNAVAILABLE, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("reports EUNAVAILABLE for an empty reply", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("   \n"),
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, scrapesense.EUNAVAILABLE, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("reports EUNAVAILABLE without a suggester", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{Extractor: goquery.NewExtractor()}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, 0, attempt.Attempts)
		assert.Equal(t, scrapesense.EUNAVAILABLE, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("reports EUNAVAILABLE when the model times out", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(ctx context.Context, _ string) (string, error) {
					<-ctx.Done()
					return "", ctx.Err()
				},
			},
			Extractor:      goquery.NewExtractor(),
			SuggestTimeout: 10 * time.Millisecond,
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, scrapesense.EUNAVAILABLE, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("reports EVALIDATION for a selector that matches nothing", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("div.nonexistent"),
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, "div.nonexistent", attempt.Suggestion)
		assert.Equal(t, scrapesense.EVALIDATION, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("reports EVALIDATION for an unparsable selector", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("h2[class="),
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, scrapesense.EVALIDATION, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("does not mutate the field", func(t *testing.T) {
		t.Parallel()

		field := titleField()
		r := &scrape.Repairer{
			Suggester: replying("h2.title"),
			Extractor: goquery.NewExtractor(),
		}

		r.Repair(context.Background(), "t1", field, renamedTitlePage)

		assert.Equal(t, "h1", field.Selector)
	})

	t.Run("calls the model once by default", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(context.Context, string) (string, error) {
					calls.Add(1)
					return "", errors.New("boom")
				},
			},
			Extractor: goquery.NewExtractor(),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, attempt.Attempts)
	})

	t.Run("retries when RetryDelays is set", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(context.Context, string) (string, error) {
					if calls.Add(1) == 1 {
						return "", errors.New("rate limited")
					}
					return "h2.title", nil
				},
			},
			Extractor:   goquery.NewExtractor(),
			RetryDelays: []time.Duration{time.Millisecond, time.Millisecond},
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		require.True(t, attempt.Validated)
		assert.Equal(t, 2, attempt.Attempts)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("stops retrying when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(context.Context, string) (string, error) {
					cancel()
					return "", errors.New("boom")
				},
			},
			Extractor:   goquery.NewExtractor(),
			RetryDelays: []time.Duration{time.Hour},
		}

		attempt := r.Repair(ctx, "t1", titleField(), renamedTitlePage)

		assert.False(t, attempt.Validated)
		assert.Equal(t, 1, attempt.Attempts)
		assert.Equal(t, scrapesense.EUNAVAILABLE, scrapesense.ErrorCode(attempt.Err))
	})

	t.Run("records prompt tokens when a counter is set", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("h2.title"),
			Extractor: goquery.NewExtractor(),
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(context.Context, string) (int, error) {
					return 42, nil
				},
			},
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.Equal(t, 42, attempt.PromptTokens)
	})

	t.Run("counts prompt tokens once across retries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var counted atomic.Int32
		var calls atomic.Int32
		r := &scrape.Repairer{
			Suggester: &mock.Suggester{
				SuggestFn: func(context.Context, string) (string, error) {
					if calls.Add(1) == 1 {
						return "", errors.New("overloaded")
					}
					return "h2.title", nil
				},
			},
			Extractor:   goquery.NewExtractor(),
			RetryDelays: []time.Duration{time.Millisecond},
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(context.Context, string) (int, error) {
					counted.Add(1)
					return 42, nil
				},
			},
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		require.True(t, attempt.Validated)
		assert.Equal(t, 2, attempt.Attempts)
		assert.Equal(t, int32(1), counted.Load())
		assert.Contains(t, buf.String(), "prompt_tokens=42")
	})

	t.Run("ignores token counter failures", func(t *testing.T) {
		t.Parallel()

		r := &scrape.Repairer{
			Suggester: replying("h2.title"),
			Extractor: goquery.NewExtractor(),
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(context.Context, string) (int, error) {
					return 0, errors.New("tokenizer unavailable")
				},
			},
		}

		attempt := r.Repair(context.Background(), "t1", titleField(), renamedTitlePage)

		assert.True(t, attempt.Validated)
		assert.Zero(t, attempt.PromptTokens)
	})
}
