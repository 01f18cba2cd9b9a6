// Package classifier proposes data categories for a text with a chat
// completion model. It backs the engine's optional LLM_CLASSIFIER stage.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/models"
)

const (
	defaultModel   = "gpt-4o-mini"
	maxTokens      = 512
	maxPromptBytes = 16_000
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements the engine's CategoryClassifier.
type Client struct {
	api   chatCompleter
	model string
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a classifier. baseURL may point at any OpenAI-compatible endpoint;
// empty keeps the public API.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("classifier api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return newWithAPI(openai.NewClientWithConfig(cfg), opts...), nil
}

func newWithAPI(api chatCompleter, opts ...Option) *Client {
	c := &Client{api: api, model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classification struct {
	Categories []struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"categories"`
}

// Classify asks the model which taxonomy categories the text contains.
// Unknown categories in the reply are dropped.
func (c *Client) Classify(ctx context.Context, text string) ([]models.CategorySuggestion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: clip(text)},
		},
		MaxTokens: maxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("classifier returned no choices")
	}

	var parsed classification
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	out := make([]models.CategorySuggestion, 0, len(parsed.Categories))
	for _, pc := range parsed.Categories {
		cat := catalog.Category(strings.ToUpper(strings.TrimSpace(pc.Category)))
		if !cat.IsValid() {
			continue
		}
		out = append(out, models.CategorySuggestion{Category: cat, Confidence: pc.Confidence})
	}
	return out, nil
}

func systemPrompt() string {
	names := make([]string, 0, len(catalog.AllCategories()))
	for _, c := range catalog.AllCategories() {
		names = append(names, string(c))
	}
	return "You label personal data found in a document for a data subject access request. " +
		"Reply with a JSON object {\"categories\":[{\"category\":NAME,\"confidence\":0..1}]} " +
		"using only these category names: " + strings.Join(names, ", ") + ". " +
		"Do not quote or repeat any content from the document."
}

func clip(text string) string {
	if len(text) <= maxPromptBytes {
		return text
	}
	cut := maxPromptBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
