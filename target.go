package scrapesense

import (
	"context"
	"strings"
	"time"
)

// Field is one logical data point extracted from a target's page.
type Field struct {
	// Name identifies the field and is unique within its target.
	Name string `json:"name" yaml:"name"`

	// Description is a natural-language hint used when asking for a
	// replacement selector. It is never rewritten by a run.
	Description string `json:"description" yaml:"description"`

	// Selector is the current CSS extraction rule. Empty means the field
	// has no selector and cannot be extracted until repaired.
	Selector string `json:"selector" yaml:"selector"`
}

// HasSelector reports whether the field carries a non-blank selector.
func (f *Field) HasSelector() bool {
	return strings.TrimSpace(f.Selector) != ""
}

// Target is a web page plus the ordered set of fields extracted from it.
type Target struct {
	ID        string    `json:"id" yaml:"id"`
	URL       string    `json:"url" yaml:"url"`
	Fields    []Field   `json:"fields" yaml:"fields"`
	IsBroken  bool      `json:"isBroken" yaml:"-"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// Validate returns an error if the target contains invalid fields.
func (t *Target) Validate() error {
	if t.ID == "" {
		return Errorf(EINVALID, "target ID required")
	}
	if t.URL == "" {
		return Errorf(EINVALID, "target URL required")
	}

	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" {
			return Errorf(EINVALID, "target %q: field %d name required", t.ID, i)
		}
		if seen[f.Name] {
			return Errorf(EINVALID, "target %q: duplicate field %q", t.ID, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Clone returns a deep copy of the target so a run can mutate it freely.
func (t *Target) Clone() *Target {
	other := *t
	other.Fields = make([]Field, len(t.Fields))
	copy(other.Fields, t.Fields)
	return &other
}

// Field returns a pointer to the field with the given name, or nil.
func (t *Target) Field(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// TargetService represents a service for managing scrape targets.
type TargetService interface {
	// FindTargetByID retrieves a target by ID.
	// Returns ENOTFOUND if target does not exist.
	FindTargetByID(ctx context.Context, id string) (*Target, error)

	// FindTargets retrieves targets matching the filter.
	FindTargets(ctx context.Context, filter TargetFilter) ([]*Target, error)

	// CreateTarget creates a new target. A missing ID is generated.
	CreateTarget(ctx context.Context, target *Target) error

	// UpsertTarget inserts the target or replaces the stored copy.
	UpsertTarget(ctx context.Context, target *Target) error
}

// TargetFilter represents a filter for FindTargets.
type TargetFilter struct {
	ID       *string `json:"id"`
	IsBroken *bool   `json:"isBroken"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
