package rod

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/scrapesense"
)

var _ scrapesense.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every page load of the wrapped Fetcher.
//
// Successful loads log at Info. Failed loads and loads that returned blank
// markup log at Warn, since both abort the run that asked for the page.
type LoggingFetcher struct {
	next   scrapesense.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher returns next wrapped with logging to logger.
func NewLoggingFetcher(next scrapesense.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, rawURL string) (markup string, err error) {
	begin := time.Now()
	markup, err = f.next.Fetch(ctx, rawURL)

	attrs := []slog.Attr{
		slog.String("host", hostOf(rawURL)),
		slog.String("url", rawURL),
		slog.Int("bytes", len(markup)),
		slog.Duration("duration", time.Since(begin)),
	}
	level := slog.LevelInfo
	switch {
	case err != nil:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("err", err))
	case strings.TrimSpace(markup) == "":
		level = slog.LevelWarn
		attrs = append(attrs, slog.Bool("blank", true))
	}
	f.logger.LogAttrs(ctx, level, "fetch", attrs...)

	return markup, err
}

// Close closes the wrapped fetcher, logging a failure.
func (f *LoggingFetcher) Close() error {
	err := f.next.Close()
	if err != nil {
		f.logger.Warn("close fetcher", "err", err)
	}
	return err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}
