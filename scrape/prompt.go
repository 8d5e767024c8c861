package scrape

import (
	"fmt"
	"strings"

	"github.com/fwojciec/scrapesense"
)

// DefaultExcerptLimit is the number of runes of page markup included in a
// repair prompt.
const DefaultExcerptLimit = 12000

// Excerpt sanitizes markup (when s is non-nil) and caps it at limit runes.
// A limit of zero or less means DefaultExcerptLimit.
func Excerpt(markup string, s scrapesense.Sanitizer, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptLimit
	}
	if s != nil {
		markup = s.Sanitize(markup)
	}
	runes := []rune(markup)
	if len(runes) <= limit {
		return markup
	}
	return string(runes[:limit])
}

// BuildPrompt builds the repair prompt for a broken field.
func BuildPrompt(field scrapesense.Field, excerpt string) string {
	selector := strings.TrimSpace(field.Selector)
	if selector == "" {
		selector = "(none)"
	}

	var sb strings.Builder
	sb.WriteString("A CSS selector used to scrape a web page no longer finds its data.\n\n")
	fmt.Fprintf(&sb, "Field name: %s\n", field.Name)
	fmt.Fprintf(&sb, "Field description: %s\n", field.Description)
	fmt.Fprintf(&sb, "Current selector: %s\n\n", selector)
	sb.WriteString("<html_excerpt>\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n</html_excerpt>\n\n")
	sb.WriteString("Reply with one CSS selector that selects the element containing this field's text. Reply with the selector only.")
	return sb.String()
}

// ParseSuggestion extracts a bare selector from a model reply, tolerating
// code fences, backticks, quotes and a leading "selector:" label.
// Returns an empty string if nothing usable is found.
func ParseSuggestion(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "selector:") {
			line = strings.TrimSpace(line[len("selector:"):])
		}
		line = strings.Trim(line, "`\"'")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
