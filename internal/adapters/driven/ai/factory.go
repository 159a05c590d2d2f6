// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/rfqx/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/rfqx/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/rfqx/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/llm/retry"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService    driven.LLMService
	VisionService driven.LLMService // Nil when the vision strategy is disabled.
	Limiter       *retry.Limiter    // Shared by both services.
	Warnings      []string          // Non-fatal issues that disabled a strategy.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
	if r.VisionService != nil {
		_ = r.VisionService.Close()
	}
}

// Init creates the analysis and vision services for settings, each wrapped
// in the retry policy of settings.Extraction and sharing one rate limiter.
//
// An unconfigured analysis model is a configuration error. An unconfigured
// vision model only adds a warning; the cascade then skips the vision strategy.
func Init(settings domain.AppSettings) (*InitResult, error) {
	if !settings.LLM.IsConfigured() {
		return nil, fmt.Errorf("%w: %w: no analysis model configured. Run 'rfqx settings wizard' to fix",
			domain.ErrConfiguration, domain.ErrLLMUnavailable)
	}

	cfg := settings.Extraction
	result := &InitResult{Limiter: retry.NewLimiter(cfg.RequestsPerSecond)}

	llm, err := NewResilientLLMService(&settings.LLM, cfg, result.Limiter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'rfqx settings wizard' to fix", domain.ErrLLMUnavailable, err)
	}
	result.LLMService = llm

	if !settings.Vision.IsConfigured() {
		result.Warnings = append(result.Warnings, "no vision model configured, vision extraction disabled")
		return result, nil
	}

	vision, err := NewResilientLLMService(&settings.Vision, cfg, result.Limiter)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("vision model unavailable: %v", err))
		logger.Warn("vision model unavailable", "provider", settings.Vision.Provider, "error", err)
		return result, nil
	}
	result.VisionService = vision

	return result, nil
}

// NewResilientLLMService creates an LLM service for settings and wraps it with
// retries, per-call timeouts and the shared limiter. Returns nil if the
// provider is not configured.
func NewResilientLLMService(settings *domain.LLMSettings, cfg domain.ExtractionConfig,
	limiter *retry.Limiter) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return nil, err
	}
	return retry.New(svc, retry.ConfigFrom(cfg), retry.WithLimiter(limiter)), nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'rfqx settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'rfqx settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use in the settings wizard to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
