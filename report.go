package scrapesense

import (
	"context"
	"time"
)

// RepairAttempt records one pass of the selector repair loop for a field.
type RepairAttempt struct {
	FieldName  string `json:"fieldName"`
	Prompt     string `json:"prompt"`
	Suggestion string `json:"suggestion,omitempty"`
	Validated  bool   `json:"validated"`
	Attempts   int    `json:"attempts"`

	// PromptTokens is the prompt size in model tokens, when counted.
	PromptTokens int `json:"promptTokens,omitempty"`

	// Err explains an unvalidated attempt: EUNAVAILABLE when no suggestion
	// was obtained, EVALIDATION when the suggestion did not extract.
	Err error `json:"-"`
}

// FieldStatus is the final, user-visible outcome of a field in a run.
type FieldStatus string

// Field statuses.
const (
	FieldSuccess      FieldStatus = "success"
	FieldNotFound     FieldStatus = "not_found"
	FieldRepaired     FieldStatus = "repaired"
	FieldRepairFailed FieldStatus = "repair_failed"
)

// FieldReport describes what happened to one field during a run.
type FieldReport struct {
	Name     string           `json:"name"`
	Value    string           `json:"value,omitempty"`
	Status   FieldStatus      `json:"status"`
	Outcome  ExtractionStatus `json:"outcome"`
	Selector string           `json:"selector"`
	Attempt  *RepairAttempt   `json:"attempt,omitempty"`

	// Diagnostic explains a failed repair in user-facing terms.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Healthy reports whether the field ended the run with a value.
func (r *FieldReport) Healthy() bool {
	return r.Status == FieldSuccess || r.Status == FieldRepaired
}

// RunReport is the result of running one target.
type RunReport struct {
	ID         string        `json:"id"`
	TargetID   string        `json:"targetId"`
	URL        string        `json:"url"`
	MarkupHash string        `json:"markupHash"`
	IsBroken   bool          `json:"isBroken"`
	Fields     []FieldReport `json:"fields"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Repaired returns the names of fields whose selector was replaced.
func (r *RunReport) Repaired() []string {
	var names []string
	for _, f := range r.Fields {
		if f.Status == FieldRepaired {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field returns the report for the named field, or nil.
func (r *RunReport) Field(name string) *FieldReport {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// RunService records run reports for later inspection.
type RunService interface {
	// CreateRun stores a report. A missing ID is generated.
	CreateRun(ctx context.Context, report *RunReport) error

	// FindRuns retrieves reports matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*RunReport, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	TargetID *string `json:"targetId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SnapshotStore keeps copies of fetched pages so a broken selector can be
// inspected against the markup it failed on.
type SnapshotStore interface {
	// SaveSnapshot stores markup fetched during the run and returns where
	// it was written.
	SaveSnapshot(ctx context.Context, report *RunReport, markup string) (string, error)
}
