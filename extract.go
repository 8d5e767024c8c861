package scrapesense

// ExtractionStatus describes how a single selector extraction ended.
type ExtractionStatus string

// Extraction statuses.
const (
	StatusSuccess         ExtractionStatus = "success"
	StatusNotFound        ExtractionStatus = "not_found"
	StatusInvalidSelector ExtractionStatus = "invalid_selector"
	StatusSelectorMissing ExtractionStatus = "selector_missing"
)

// ExtractionOutcome is the transient result of extracting one field.
type ExtractionOutcome struct {
	FieldName string           `json:"fieldName"`
	Text      string           `json:"text,omitempty"`
	Status    ExtractionStatus `json:"status"`
}

// Extractor pulls text out of rendered markup with a CSS selector.
type Extractor interface {
	// Extract returns the trimmed descendant text of every node matching
	// selector, concatenated in document order.
	// Returns ENOTFOUND if nothing matches or the text is blank, and
	// EINVALID if the selector cannot be parsed.
	Extract(markup, selector string) (string, error)
}

// NewOutcome converts an Extractor result into an ExtractionOutcome.
func NewOutcome(fieldName, text string, err error) ExtractionOutcome {
	o := ExtractionOutcome{FieldName: fieldName}
	switch {
	case err == nil && text != "":
		o.Text = text
		o.Status = StatusSuccess
	case ErrorCode(err) == EINVALID:
		o.Status = StatusInvalidSelector
	default:
		o.Status = StatusNotFound
	}
	return o
}

// ExtractField runs ext against markup for a single field.
// A field without a selector yields StatusSelectorMissing without calling ext.
func ExtractField(ext Extractor, field Field, markup string) ExtractionOutcome {
	if !field.HasSelector() {
		return ExtractionOutcome{FieldName: field.Name, Status: StatusSelectorMissing}
	}
	text, err := ext.Extract(markup, field.Selector)
	return NewOutcome(field.Name, text, err)
}
