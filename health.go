package scrapesense

// Health is the verdict of the broken-selector detector.
type Health int

// Health values.
const (
	Healthy Health = iota
	Broken
)

// String returns the lowercase name of the verdict.
func (h Health) String() string {
	if h == Broken {
		return "broken"
	}
	return "healthy"
}

// Classify decides whether a field's selector is broken given one
// extraction outcome. It keeps no history: a single miss is enough.
func Classify(field Field, outcome ExtractionOutcome) Health {
	if !field.HasSelector() {
		return Broken
	}
	if outcome.Status != StatusSuccess || outcome.Text == "" {
		return Broken
	}
	return Healthy
}
