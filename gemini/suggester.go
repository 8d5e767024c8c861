// Package gemini implements scrapesense.Suggester with Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/scrapesense"
	"google.golang.org/genai"
)

// DefaultModel is used when no model identifier is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned, without any network call, when no API key is
// configured. Remote failures are EUNAVAILABLE errors other than this one.
var ErrNoAPIKey = &scrapesense.Error{
	Code:    scrapesense.EUNAVAILABLE,
	Message: "GEMINI_API_KEY not configured",
}

// Ensure Suggester implements scrapesense.Suggester at compile time.
var _ scrapesense.Suggester = (*Suggester)(nil)

// Suggester implements scrapesense.Suggester using Google Gemini.
type Suggester struct {
	client *genai.Client
	model  string
}

// NewSuggester creates a new Suggester. A nil client makes every call fail
// with ErrNoAPIKey.
func NewSuggester(client *genai.Client, model string) *Suggester {
	if model == "" {
		model = DefaultModel
	}
	return &Suggester{client: client, model: model}
}

// NewClient creates a Gemini API client for apiKey.
// An empty key returns ErrNoAPIKey without touching the network.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, scrapesense.Errorf(scrapesense.EUNAVAILABLE, "gemini client: %v", err)
	}
	return client, nil
}

// Suggest sends prompt to the model and returns the text of its answer.
func (s *Suggester) Suggest(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", ErrNoAPIKey
	}
	if prompt == "" {
		return "", scrapesense.Errorf(scrapesense.EINVALID, "prompt required")
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", scrapesense.Errorf(scrapesense.EUNAVAILABLE, "gemini: %v", err)
	}
	if result == nil {
		return "", scrapesense.Errorf(scrapesense.EUNAVAILABLE, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", scrapesense.Errorf(scrapesense.EUNAVAILABLE, "gemini returned an empty answer")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert web scraping assistant. Given an HTML excerpt and a description of a data field, reply with a single CSS selector that matches the element containing that field. Reply with the selector only, without explanation or formatting.",
			}},
		},
		Temperature: &temp,
	}
}
