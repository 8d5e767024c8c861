package mock

import (
	"context"

	"github.com/fwojciec/scrapesense"
)

var _ scrapesense.TargetService = (*TargetService)(nil)

// TargetService is a mock implementation of scrapesense.TargetService.
type TargetService struct {
	FindTargetByIDFn func(ctx context.Context, id string) (*scrapesense.Target, error)
	FindTargetsFn    func(ctx context.Context, filter scrapesense.TargetFilter) ([]*scrapesense.Target, error)
	CreateTargetFn   func(ctx context.Context, target *scrapesense.Target) error
	UpsertTargetFn   func(ctx context.Context, target *scrapesense.Target) error
}

func (s *TargetService) FindTargetByID(ctx context.Context, id string) (*scrapesense.Target, error) {
	return s.FindTargetByIDFn(ctx, id)
}

func (s *TargetService) FindTargets(ctx context.Context, filter scrapesense.TargetFilter) ([]*scrapesense.Target, error) {
	return s.FindTargetsFn(ctx, filter)
}

func (s *TargetService) CreateTarget(ctx context.Context, target *scrapesense.Target) error {
	return s.CreateTargetFn(ctx, target)
}

func (s *TargetService) UpsertTarget(ctx context.Context, target *scrapesense.Target) error {
	return s.UpsertTargetFn(ctx, target)
}

var _ scrapesense.RunService = (*RunService)(nil)

// RunService is a mock implementation of scrapesense.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, report *scrapesense.RunReport) error
	FindRunsFn  func(ctx context.Context, filter scrapesense.RunFilter) ([]*scrapesense.RunReport, error)
}

func (s *RunService) CreateRun(ctx context.Context, report *scrapesense.RunReport) error {
	return s.CreateRunFn(ctx, report)
}

func (s *RunService) FindRuns(ctx context.Context, filter scrapesense.RunFilter) ([]*scrapesense.RunReport, error) {
	return s.FindRunsFn(ctx, filter)
}

var _ scrapesense.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of scrapesense.SnapshotStore.
type SnapshotStore struct {
	SaveSnapshotFn func(ctx context.Context, report *scrapesense.RunReport, markup string) (string, error)
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, report *scrapesense.RunReport, markup string) (string, error) {
	return s.SaveSnapshotFn(ctx, report, markup)
}
