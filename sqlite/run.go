package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/scrapesense"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapesense.RunService = (*RunService)(nil)

// RunService implements scrapesense.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run report.
func (s *RunService) CreateRun(ctx context.Context, report *scrapesense.RunReport) error {
	if report.TargetID == "" {
		return scrapesense.Errorf(scrapesense.EINVALID, "run target ID required")
	}
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	fields, err := json.Marshal(report.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode run fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, target_id, url, markup_hash, is_broken, fields, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.TargetID, report.URL, report.MarkupHash, report.IsBroken, string(fields),
		formatTime(report.StartedAt), formatTime(report.FinishedAt))

	return err
}

// FindRuns retrieves run reports matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter scrapesense.RunFilter) ([]*scrapesense.RunReport, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, target_id, url, markup_hash, is_broken, fields, started_at, finished_at FROM runs WHERE 1=1")

	if filter.TargetID != nil {
		query.WriteString(" AND target_id = ?")
		args = append(args, *filter.TargetID)
	}

	query.WriteString(" ORDER BY started_at DESC")
	paginate(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*scrapesense.RunReport
	for rows.Next() {
		var r scrapesense.RunReport
		var fields, startedAt, finishedAt string

		if err := rows.Scan(&r.ID, &r.TargetID, &r.URL, &r.MarkupHash, &r.IsBroken, &fields,
			&startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode run fields: %w", err)
		}
		if r.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
			return nil, err
		}

		reports = append(reports, &r)
	}

	return reports, rows.Err()
}
