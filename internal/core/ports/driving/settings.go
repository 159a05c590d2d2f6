package driving

import "github.com/custodia-labs/rfqx/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the analysis model provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetVisionProvider configures the vision model provider.
	SetVisionProvider(provider domain.AIProvider, model, apiKey string) error

	// SetExtractionConfig persists cascade parameters.
	SetExtractionConfig(cfg domain.ExtractionConfig) error

	// ExtractionConfig returns the cascade parameters as an explicit value.
	ExtractionConfig() (domain.ExtractionConfig, error)

	// Validate checks the current settings can run a cascade.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
