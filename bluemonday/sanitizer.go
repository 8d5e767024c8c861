// Package bluemonday implements scrapesense.Sanitizer with a bluemonday policy.
package bluemonday

import (
	"regexp"
	"strings"

	"github.com/fwojciec/scrapesense"
	"github.com/microcosm-cc/bluemonday"
)

// Ensure Sanitizer implements scrapesense.Sanitizer at compile time.
var _ scrapesense.Sanitizer = (*Sanitizer)(nil)

var blankRuns = regexp.MustCompile(`\s{2,}`)

// Sanitizer strips markup down to the structure a selector can target.
// Scripts, styles, comments and event handlers are removed. Structural and
// form elements are kept with their class, id, data-* and a handful of
// descriptive attributes.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// formElements are the controls and containers a field's value often lives
// in on product and checkout pages.
var formElements = []string{
	"form", "fieldset", "legend", "label", "input", "button", "select",
	"option", "optgroup", "textarea", "output", "datalist", "meter", "progress",
}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id", "itemprop", "itemtype", "role", "aria-label", "name").Globally()
	p.AllowAttrs("type", "value", "for", "placeholder", "title", "datetime", "content", "selected", "checked", "disabled").Globally()
	p.AllowDataAttributes()
	p.AllowElements("html", "body", "main", "header", "footer", "nav", "section", "article", "aside", "span", "div", "time", "data")
	p.AllowElements(formElements...)
	// Kept even without attributes so the element itself stays targetable.
	p.AllowNoAttrs().OnElements(append([]string{"html", "body", "main", "data"}, formElements...)...)
	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned markup with whitespace runs collapsed.
func (s *Sanitizer) Sanitize(markup string) string {
	out := s.policy.Sanitize(markup)
	out = blankRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
