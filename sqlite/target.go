package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/scrapesense"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapesense.TargetService = (*TargetService)(nil)

// TargetService implements scrapesense.TargetService using SQLite.
type TargetService struct {
	db *DB
}

// NewTargetService creates a new TargetService.
func NewTargetService(db *DB) *TargetService {
	return &TargetService{db: db}
}

// CreateTarget creates a new target.
// Returns EINVALID if a target with the same ID already exists.
func (s *TargetService) CreateTarget(ctx context.Context, target *scrapesense.Target) error {
	if target.ID == "" {
		target.ID = uuid.New().String()
	}
	if err := target.Validate(); err != nil {
		return err
	}

	fields, err := marshalFields(target.Fields)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	target.CreatedAt = now
	target.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO targets (id, url, fields, is_broken, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, target.ID, target.URL, fields, target.IsBroken,
		formatTime(target.CreatedAt), formatTime(target.UpdatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return scrapesense.Errorf(scrapesense.EINVALID, "target %q already exists", target.ID)
	}

	return err
}

// UpsertTarget inserts the target or replaces the stored copy,
// preserving the original creation time.
func (s *TargetService) UpsertTarget(ctx context.Context, target *scrapesense.Target) error {
	if err := target.Validate(); err != nil {
		return err
	}

	fields, err := marshalFields(target.Fields)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if target.CreatedAt.IsZero() {
		target.CreatedAt = now
	}
	target.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO targets (id, url, fields, is_broken, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			fields = excluded.fields,
			is_broken = excluded.is_broken,
			updated_at = excluded.updated_at
	`, target.ID, target.URL, fields, target.IsBroken,
		formatTime(target.CreatedAt), formatTime(target.UpdatedAt))

	return err
}

// FindTargetByID retrieves a target by ID.
func (s *TargetService) FindTargetByID(ctx context.Context, id string) (*scrapesense.Target, error) {
	target, err := scanTarget(s.db.QueryRowContext(ctx, `
		SELECT id, url, fields, is_broken, created_at, updated_at
		FROM targets
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, scrapesense.Errorf(scrapesense.ENOTFOUND, "target %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

// FindTargets retrieves targets matching the filter, ordered by ID.
func (s *TargetService) FindTargets(ctx context.Context, filter scrapesense.TargetFilter) ([]*scrapesense.Target, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, fields, is_broken, created_at, updated_at FROM targets WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.IsBroken != nil {
		query.WriteString(" AND is_broken = ?")
		args = append(args, *filter.IsBroken)
	}

	query.WriteString(" ORDER BY id")
	paginate(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*scrapesense.Target
	for rows.Next() {
		target, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner) (*scrapesense.Target, error) {
	var target scrapesense.Target
	var fields, createdAt, updatedAt string

	if err := row.Scan(&target.ID, &target.URL, &fields, &target.IsBroken, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fields), &target.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields of target %q: %w", target.ID, err)
	}

	var err error
	if target.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if target.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &target, nil
}

func marshalFields(fields []scrapesense.Field) (string, error) {
	if fields == nil {
		fields = []scrapesense.Field{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}
	return string(b), nil
}
