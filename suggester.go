package scrapesense

import "context"

// Suggester asks a language model for a completion.
type Suggester interface {
	// Suggest sends a single text prompt and returns the model's answer.
	// Returns EUNAVAILABLE when the model is not configured, the call
	// fails, or the answer is empty.
	Suggest(ctx context.Context, prompt string) (string, error)
}

// Sanitizer reduces page markup to the parts useful for choosing a selector.
type Sanitizer interface {
	// Sanitize drops scripts, styles and other noise while keeping the
	// element structure and the class and id attributes.
	Sanitize(markup string) string
}

// TokenCounter measures a prompt in model tokens.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
