package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"ResearchReporter/internal/config"
	"ResearchReporter/internal/ports"
)

// GeminiClient implements ports.TextGenerator on the Gemini API.
// The SDK client is created on first use.
type GeminiClient struct {
	apiKey       string
	model        string
	systemPrompt string

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ ports.TextGenerator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.LLMConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:       cfg.GeminiAPIKey,
		model:        cfg.GeminiModel,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Generate sends the prompt pair; JSONOnly maps onto the application/json response type.
func (g *GeminiClient) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if g.apiKey == "" || g.model == "" {
		return "", fmt.Errorf("gemini: %w", errMisconfigured)
	}

	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(safePrompt(req.SystemPrompt, g.systemPrompt), genai.RoleUser),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

func (g *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if g.initErr != nil {
			g.initErr = fmt.Errorf("create gemini client: %w", g.initErr)
		}
	})
	return g.client, g.initErr
}
