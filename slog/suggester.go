// Package slog provides logging decorators for scrapesense services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapesense"
)

// Ensure LoggingSuggester implements scrapesense.Suggester.
var _ scrapesense.Suggester = (*LoggingSuggester)(nil)

// LoggingSuggester wraps a Suggester with logging.
type LoggingSuggester struct {
	next   scrapesense.Suggester
	logger *slog.Logger
}

// NewLoggingSuggester creates a new LoggingSuggester.
func NewLoggingSuggester(next scrapesense.Suggester, logger *slog.Logger) *LoggingSuggester {
	return &LoggingSuggester{next: next, logger: logger}
}

// Suggest logs the prompt size, the reply and the duration of the call.
func (s *LoggingSuggester) Suggest(ctx context.Context, prompt string) (reply string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "suggest",
			"prompt_bytes", len(prompt),
			"reply", reply,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	return s.next.Suggest(ctx, prompt)
}
