package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ResearchReporter/internal/config"
	"ResearchReporter/internal/ports"
)

var errMisconfigured = errors.New("llm client misconfigured")

// ChatGPTClient implements ports.TextGenerator backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client       *openai.Client
	model        string
	apiKey       string
	systemPrompt string
}

var _ ports.TextGenerator = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.LLMConfig, httpClient *http.Client) *ChatGPTClient {
	transport := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		transport.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	transport.HTTPClient = httpClient

	return &ChatGPTClient{
		client:       openai.NewClientWithConfig(transport),
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Generate sends one system+user exchange and returns the first choice.
func (c *ChatGPTClient) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt: %w", errMisconfigured)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: safePrompt(req.SystemPrompt, c.systemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONOnly {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func safePrompt(prompt, fallback string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt != "" {
		return prompt
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return "You are a careful research assistant that answers with a single JSON object."
}
