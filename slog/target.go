package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapesense"
)

// Ensure LoggingTargetService implements scrapesense.TargetService.
var _ scrapesense.TargetService = (*LoggingTargetService)(nil)

// LoggingTargetService wraps a TargetService and logs writes.
// Reads are delegated without logging.
type LoggingTargetService struct {
	next   scrapesense.TargetService
	logger *slog.Logger
}

// NewLoggingTargetService creates a new LoggingTargetService.
func NewLoggingTargetService(next scrapesense.TargetService, logger *slog.Logger) *LoggingTargetService {
	return &LoggingTargetService{next: next, logger: logger}
}

func (s *LoggingTargetService) FindTargetByID(ctx context.Context, id string) (*scrapesense.Target, error) {
	return s.next.FindTargetByID(ctx, id)
}

func (s *LoggingTargetService) FindTargets(ctx context.Context, filter scrapesense.TargetFilter) ([]*scrapesense.Target, error) {
	return s.next.FindTargets(ctx, filter)
}

func (s *LoggingTargetService) CreateTarget(ctx context.Context, target *scrapesense.Target) (err error) {
	defer s.logWrite(ctx, "create target", target, time.Now(), &err)
	return s.next.CreateTarget(ctx, target)
}

func (s *LoggingTargetService) UpsertTarget(ctx context.Context, target *scrapesense.Target) (err error) {
	defer s.logWrite(ctx, "upsert target", target, time.Now(), &err)
	return s.next.UpsertTarget(ctx, target)
}

func (s *LoggingTargetService) logWrite(ctx context.Context, msg string, t *scrapesense.Target, begin time.Time, err *error) {
	level := slog.LevelDebug
	if *err != nil {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, msg,
		"id", t.ID,
		"fields", len(t.Fields),
		"broken", t.IsBroken,
		"duration", time.Since(begin),
		"err", *err,
	)
}
