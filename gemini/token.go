package gemini

import (
	"context"

	"github.com/fwojciec/scrapesense"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ scrapesense.TokenCounter = (*TokenCounter)(nil)

// TokenCounter measures repair prompts with the local Gemini tokenizer.
// Counts include the system instruction sent by Suggester, so they match
// what the model is billed for.
type TokenCounter struct {
	tok    *tokenizer.LocalTokenizer
	config *genai.CountTokensConfig
}

// NewTokenCounter loads the tokenizer for model. An empty model means
// DefaultModel. Returns EUNAVAILABLE if the tokenizer cannot be loaded.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, scrapesense.Errorf(scrapesense.EUNAVAILABLE, "tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{
		tok:    tok,
		config: &genai.CountTokensConfig{SystemInstruction: BuildConfig().SystemInstruction},
	}, nil
}

// CountTokens returns the number of tokens a Suggest call for prompt uses.
// An empty prompt counts as zero.
func (tc *TokenCounter) CountTokens(ctx context.Context, prompt string) (int, error) {
	if prompt == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, tc.config)
	if err != nil {
		return 0, scrapesense.Errorf(scrapesense.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
