package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"learnpod/internal/logging"
	"learnpod/internal/textutil"
)

// TokenCounter returns the exact token cost of text for the configured model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// GenaiCounter counts tokens through the Gemini SDK.
type GenaiCounter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGenaiCounter opens an SDK client for the given model. Call Close when done.
func NewGenaiCounter(ctx context.Context, apiKey, model string) (*GenaiCounter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("token counter: api key required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("token counter: create client: %w", err)
	}
	return &GenaiCounter{client: client, model: client.GenerativeModel(model)}, nil
}

// CountTokens asks the service for the exact token count of text.
func (g *GenaiCounter) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := g.model.CountTokens(ctx, genai.Text(text))
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return int(resp.TotalTokens), nil
}

// Close releases the SDK client.
func (g *GenaiCounter) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// CostFunc adapts counter into a chunker cost oracle. When counter is nil or a
// count fails, the deterministic estimate is used instead; the first failure
// is logged once so a broken counter does not flood the run log.
func CostFunc(ctx context.Context, counter TokenCounter, logger *slog.Logger) func(string) int {
	if counter == nil {
		return textutil.EstimateTokens
	}
	var once sync.Once
	return func(text string) int {
		count, err := counter.CountTokens(ctx, text)
		if err != nil {
			once.Do(func() {
				logging.WarnWithContext(logging.WithContext(ctx, logger), "token count failed; using estimate", "token_count_fallback",
					logging.Error(err),
					logging.String(logging.FieldImpact, "chunk sizes use the character-based estimate"),
				)
			})
			return textutil.EstimateTokens(text)
		}
		return count
	}
}
