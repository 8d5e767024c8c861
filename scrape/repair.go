package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapesense"
)

// DefaultSuggestTimeout bounds a single language-model call.
const DefaultSuggestTimeout = 30 * time.Second

// Repairer asks a Suggester for a replacement selector and accepts it only
// if it extracts text from the same markup. It never persists anything.
type Repairer struct {
	Suggester scrapesense.Suggester
	Extractor scrapesense.Extractor

	// Sanitizer, if set, cleans markup before it is excerpted into the prompt.
	Sanitizer scrapesense.Sanitizer

	// TokenCounter, if set, measures the prompt once per repair and records
	// the size in the attempt and the repair log line.
	TokenCounter scrapesense.TokenCounter

	// ExcerptLimit caps the markup excerpt in runes. Zero means DefaultExcerptLimit.
	ExcerptLimit int

	// SuggestTimeout bounds each Suggester call. Zero means DefaultSuggestTimeout.
	SuggestTimeout time.Duration

	// RetryDelays lists the waits between additional Suggester calls after a
	// failed one. Empty means exactly one call.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Repair runs one repair pass for field against markup.
// The returned attempt is Validated only when its Suggestion extracted
// non-empty text; otherwise Err carries EUNAVAILABLE or EVALIDATION.
func (r *Repairer) Repair(ctx context.Context, targetID string, field scrapesense.Field, markup string) *scrapesense.RepairAttempt {
	excerpt := Excerpt(markup, r.Sanitizer, r.ExcerptLimit)
	attempt := &scrapesense.RepairAttempt{
		FieldName: field.Name,
		Prompt:    BuildPrompt(field, excerpt),
	}

	if r.TokenCounter != nil {
		if n, err := r.TokenCounter.CountTokens(ctx, attempt.Prompt); err == nil {
			attempt.PromptTokens = n
		}
	}

	reply, err := r.suggest(ctx, attempt)
	if err != nil {
		attempt.Err = scrapesense.Errorf(scrapesense.EUNAVAILABLE, "no suggestion for field %q: %s", field.Name, reason(err))
		r.log(ctx, targetID, attempt)
		return attempt
	}

	attempt.Suggestion = ParseSuggestion(reply)
	if attempt.Suggestion == "" {
		attempt.Err = scrapesense.Errorf(scrapesense.EUNAVAILABLE, "empty suggestion for field %q", field.Name)
		r.log(ctx, targetID, attempt)
		return attempt
	}

	text, err := r.Extractor.Extract(markup, attempt.Suggestion)
	if err != nil || text == "" {
		attempt.Err = scrapesense.Errorf(scrapesense.EVALIDATION, "suggested selector %q for field %q did not extract: %s",
			attempt.Suggestion, field.Name, reason(err))
		r.log(ctx, targetID, attempt)
		return attempt
	}

	attempt.Validated = true
	r.log(ctx, targetID, attempt)
	return attempt
}

// suggest calls the Suggester, retrying only as configured by RetryDelays.
func (r *Repairer) suggest(ctx context.Context, attempt *scrapesense.RepairAttempt) (string, error) {
	if r.Suggester == nil {
		return "", scrapesense.Errorf(scrapesense.EUNAVAILABLE, "no language model configured")
	}

	timeout := r.SuggestTimeout
	if timeout <= 0 {
		timeout = DefaultSuggestTimeout
	}

	maxAttempts := len(r.RetryDelays) + 1

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		attempt.Attempts++

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		reply, err := r.Suggester.Suggest(callCtx, attempt.Prompt)
		cancel()
		if err == nil {
			return reply, nil
		}
		lastErr = err

		// Don't wait after the last attempt
		if i >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.RetryDelays[i]):
		}
	}

	return "", lastErr
}

func (r *Repairer) log(ctx context.Context, targetID string, a *scrapesense.RepairAttempt) {
	if r.Logger == nil {
		return
	}
	level := slog.LevelInfo
	if !a.Validated {
		level = slog.LevelWarn
	}
	attrs := []any{
		"target", targetID,
		"field", a.FieldName,
		"suggestion", a.Suggestion,
		"validated", a.Validated,
		"attempts", a.Attempts,
	}
	if a.PromptTokens > 0 {
		attrs = append(attrs, "prompt_tokens", a.PromptTokens)
	}
	attrs = append(attrs, "err", a.Err)
	r.Logger.Log(ctx, level, "repair", attrs...)
}

// reason renders err for a diagnostic. Application errors give their
// message; anything else gives its full text.
func reason(err error) string {
	switch scrapesense.ErrorCode(err) {
	case "":
		return "no text"
	case scrapesense.EINTERNAL:
		return err.Error()
	default:
		return scrapesense.ErrorMessage(err)
	}
}
