// Package anthropic provides an LLM service adapter using the Anthropic API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/llm"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com/"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	providerName = "anthropic"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com/).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the HTTP client timeout (default: 120s).
	Timeout time.Duration

	// HTTPClient replaces the default client, mostly for tests.
	HTTPClient *http.Client
}

// LLMService provides LLM operations using the Anthropic API.
// The SDK's own retries are disabled; the retry decorator owns that policy.
type LLMService struct {
	messages anthropic.MessageService
	models   anthropic.ModelService
	model    string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(client),
		option.WithMaxRetries(0),
	}

	return &LLMService{
		messages: anthropic.NewMessageService(opts...),
		models:   anthropic.NewModelService(opts...),
		model:    cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request(nil, opts.MaxTokens, opts.Temperature)
	req.Messages = []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))}
	if len(opts.StopWords) > 0 {
		req.StopSequences = opts.StopWords
	}
	return s.send(ctx, req)
}

// Chat conducts a multi-turn conversation. System messages become the
// system prompt; images on user messages become base64 image blocks.
// Anthropic has no JSON mode, so opts.JSON relies on the prompt.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []anthropic.TextBlockParam
	var params []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			if msg.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			}
		case driven.RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			var blocks []anthropic.ContentBlockParamUnion
			for _, img := range msg.Images {
				blocks = append(blocks, anthropic.NewImageBlockBase64(imageType(img.MIMEType), llm.Base64(img.Data)))
			}
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			params = append(params, anthropic.NewUserMessage(blocks...))
		}
	}

	req := s.request(system, opts.MaxTokens, opts.Temperature)
	req.Messages = params
	return s.send(ctx, req)
}

func (s *LLMService) request(system []anthropic.TextBlockParam, maxTokens int, temperature float64) anthropic.MessageNewParams {
	// Anthropic requires max_tokens to be set
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
	}
	if len(system) > 0 {
		req.System = system
	}
	return req
}

func (s *LLMService) send(ctx context.Context, req anthropic.MessageNewParams) (string, error) {
	msg, err := s.messages.New(ctx, req)
	if err != nil {
		return "", convertError(err)
	}

	var result strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}
	return result.String(), nil
}

// convertError turns SDK API errors into llm.StatusError so the retry layer
// can classify them.
func convertError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return llm.NewStatusError(providerName, apiErr.StatusCode, apiErr.RawJSON(), header)
	}
	return fmt.Errorf("anthropic: %w", err)
}

// imageType maps a MIME type onto one Anthropic accepts.
func imageType(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/png"
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models, without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", convertError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
