package ai

import (
	"context"
	"fmt"
	"iter"

	"yt-summary/shared/config"

	"google.golang.org/genai"
)

// Summarizer streams Gemini completions. One client is built at startup and shared by all requests.
type Summarizer struct {
	client *genai.Client
	model  string
}

func NewSummarizer(ctx context.Context, cfg *config.AIConfig) (*Summarizer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, config.ErrMissingGeminiKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Summarizer{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Verify makes one metadata call so that an invalid key or model fails at startup
func (s *Summarizer) Verify(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("failed to verify Gemini model %s: %w", s.model, err)
	}
	return nil
}

func (s *Summarizer) Model() string {
	return s.model
}

// GenerateStream yields text fragments as Gemini produces them. The first error ends the sequence.
// Breaking out of the range loop stops reading from the upstream stream.
func (s *Summarizer) GenerateStream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, genai.Text(prompt), nil) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream failed: %w", err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}
