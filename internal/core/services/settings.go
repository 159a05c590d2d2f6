package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyVisionProvider = "vision.provider"
	keyVisionModel    = "vision.model"
	keyVisionBaseURL  = "vision.base_url"
	keyVisionAPIKey   = "vision.api_key"

	keyThreshold         = "extraction.threshold"
	keyCharBudget        = "extraction.char_budget"
	keyVisionPageCap     = "extraction.vision_page_cap"
	keyVisionBatchSize   = "extraction.vision_batch_size"
	keyRetryAttempts     = "extraction.retry_attempts"
	keyRetryBaseDelayMS  = "extraction.retry_base_delay_ms"
	keyRetryMaxDelayMS   = "extraction.retry_max_delay_ms"
	keyModelTimeoutS     = "extraction.model_timeout_s"
	keyExtractorTimeoutS = "extraction.extractor_timeout_s"
	keyRequestsPerSecond = "extraction.requests_per_second"
	keyEnableFallback    = "extraction.enable_fallback"
	keyPostProcessors    = "extraction.postprocessors"

	keyWeightItemCount    = "scoring.weight_item_count"
	keyWeightCompleteness = "scoring.weight_completeness"
	keyWeightValidity     = "scoring.weight_validity"
	keyWeightTextQuality  = "scoring.weight_text_quality"
	keyItemSaturation     = "scoring.item_saturation"
)

// Environment variables that override stored API keys.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvLLMAPIKey       = "RFQX_LLM_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Invalid stored values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM:        s.getLLM(keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, defaults.LLM),
		Vision:     s.getLLM(keyVisionProvider, keyVisionModel, keyVisionBaseURL, keyVisionAPIKey, defaults.Vision),
		Extraction: s.getExtraction(defaults.Extraction),
	}

	return settings, nil
}

func (s *SettingsService) getLLM(provKey, modelKey, urlKey, apiKey string, def domain.LLMSettings) domain.LLMSettings {
	llm := domain.LLMSettings{
		Provider: s.getProvider(provKey, def.Provider),
		Model:    s.getString(modelKey, def.Model),
		BaseURL:  s.configStore.GetString(urlKey), // No default - empty is valid for cloud providers
		APIKey:   s.configStore.GetString(apiKey),
	}
	if key := s.envAPIKey(llm.Provider); key != "" {
		llm.APIKey = key
	}
	return llm
}

// envAPIKey returns the environment override for provider, if any.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	if s.getenv == nil {
		return ""
	}
	if key := s.getenv(EnvLLMAPIKey); key != "" {
		return key
	}
	switch provider {
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) getExtraction(def domain.ExtractionConfig) domain.ExtractionConfig {
	cfg := def

	if v, ok := s.getPositiveFloat(keyThreshold); ok && v <= 1 {
		cfg.Threshold = v
	}
	cfg.CharBudget = s.getInt(keyCharBudget, def.CharBudget)
	cfg.VisionPageCap = s.getInt(keyVisionPageCap, def.VisionPageCap)
	cfg.VisionBatchSize = s.getInt(keyVisionBatchSize, def.VisionBatchSize)
	if _, exists := s.configStore.Get(keyRetryAttempts); exists && s.configStore.GetInt(keyRetryAttempts) >= 0 {
		cfg.RetryAttempts = s.configStore.GetInt(keyRetryAttempts)
	}
	cfg.RetryBaseDelay = s.getDuration(keyRetryBaseDelayMS, time.Millisecond, def.RetryBaseDelay)
	cfg.RetryMaxDelay = s.getDuration(keyRetryMaxDelayMS, time.Millisecond, def.RetryMaxDelay)
	cfg.ModelTimeout = s.getDuration(keyModelTimeoutS, time.Second, def.ModelTimeout)
	cfg.ExtractorTimeout = s.getDuration(keyExtractorTimeoutS, time.Second, def.ExtractorTimeout)
	if _, exists := s.configStore.Get(keyRequestsPerSecond); exists && s.configStore.GetFloat(keyRequestsPerSecond) >= 0 {
		cfg.RequestsPerSecond = s.configStore.GetFloat(keyRequestsPerSecond)
	}
	cfg.EnableFallback = s.getBool(keyEnableFallback, def.EnableFallback)
	if names := s.configStore.GetStringSlice(keyPostProcessors); names != nil {
		cfg.PostProcessing.Processors = names
	}

	w := def.Scoring.Weights
	weights := domain.ScoreWeights{
		ItemCount:    s.getWeight(keyWeightItemCount, w.ItemCount),
		Completeness: s.getWeight(keyWeightCompleteness, w.Completeness),
		Validity:     s.getWeight(keyWeightValidity, w.Validity),
		TextQuality:  s.getWeight(keyWeightTextQuality, w.TextQuality),
	}
	if weights.Sum() > 0 {
		cfg.Scoring.Weights = weights
	}
	cfg.Scoring.ItemSaturation = s.getInt(keyItemSaturation, def.Scoring.ItemSaturation)

	if cfg.RetryMaxDelay > 0 && cfg.RetryBaseDelay > cfg.RetryMaxDelay {
		cfg.RetryBaseDelay, cfg.RetryMaxDelay = def.RetryBaseDelay, def.RetryMaxDelay
	}
	return cfg
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.saveLLM(settings.LLM, keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey); err != nil {
		return err
	}
	if err := s.saveLLM(settings.Vision, keyVisionProvider, keyVisionModel, keyVisionBaseURL, keyVisionAPIKey); err != nil {
		return err
	}
	return s.SetExtractionConfig(settings.Extraction)
}

func (s *SettingsService) saveLLM(llm domain.LLMSettings, provKey, modelKey, urlKey, apiKey string) error {
	if err := s.configStore.Set(provKey, llm.Provider.String()); err != nil {
		return fmt.Errorf("save %s: %w", provKey, err)
	}
	if err := s.configStore.Set(modelKey, llm.Model); err != nil {
		return fmt.Errorf("save %s: %w", modelKey, err)
	}
	if err := s.configStore.Set(urlKey, llm.BaseURL); err != nil {
		return fmt.Errorf("save %s: %w", urlKey, err)
	}
	if llm.APIKey != "" {
		if err := s.configStore.Set(apiKey, llm.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", apiKey, err)
		}
	}
	return nil
}

// SetExtractionConfig persists cascade parameters.
func (s *SettingsService) SetExtractionConfig(cfg domain.ExtractionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyThreshold, cfg.Threshold},
		{keyCharBudget, cfg.CharBudget},
		{keyVisionPageCap, cfg.VisionPageCap},
		{keyVisionBatchSize, cfg.VisionBatchSize},
		{keyRetryAttempts, cfg.RetryAttempts},
		{keyRetryBaseDelayMS, cfg.RetryBaseDelay.Milliseconds()},
		{keyRetryMaxDelayMS, cfg.RetryMaxDelay.Milliseconds()},
		{keyModelTimeoutS, int64(cfg.ModelTimeout / time.Second)},
		{keyExtractorTimeoutS, int64(cfg.ExtractorTimeout / time.Second)},
		{keyRequestsPerSecond, cfg.RequestsPerSecond},
		{keyEnableFallback, cfg.EnableFallback},
		{keyPostProcessors, cfg.PostProcessing.Processors},
		{keyWeightItemCount, cfg.Scoring.Weights.ItemCount},
		{keyWeightCompleteness, cfg.Scoring.Weights.Completeness},
		{keyWeightValidity, cfg.Scoring.Weights.Validity},
		{keyWeightTextQuality, cfg.Scoring.Weights.TextQuality},
		{keyItemSaturation, cfg.Scoring.ItemSaturation},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// ExtractionConfig returns the cascade parameters as an explicit value.
func (s *SettingsService) ExtractionConfig() (domain.ExtractionConfig, error) {
	settings, err := s.Get()
	if err != nil {
		return domain.ExtractionConfig{}, err
	}
	return settings.Extraction, nil
}

// SetLLMProvider configures the analysis model provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	llm, err := configureProvider(settings.LLM, provider, model, apiKey, domain.DefaultLLMModels())
	if err != nil {
		return fmt.Errorf("LLM: %w", err)
	}
	settings.LLM = llm
	return s.Save(settings)
}

// SetVisionProvider configures the vision model provider.
func (s *SettingsService) SetVisionProvider(provider domain.AIProvider, model, apiKey string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	vision, err := configureProvider(settings.Vision, provider, model, apiKey, domain.DefaultVisionModels())
	if err != nil {
		return fmt.Errorf("vision: %w", err)
	}
	settings.Vision = vision
	return s.Save(settings)
}

func configureProvider(
	current domain.LLMSettings,
	provider domain.AIProvider,
	model, apiKey string,
	defaults map[domain.AIProvider]string,
) (domain.LLMSettings, error) {
	if !provider.IsValid() {
		return current, fmt.Errorf("invalid provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return current, fmt.Errorf("API key required for %s", provider)
	}

	current.Provider = provider

	// Set model - use provided or default
	if model != "" {
		current.Model = model
	} else if defaultModel, ok := defaults[provider]; ok {
		current.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if current.BaseURL == "" {
			current.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		current.BaseURL = ""
	}

	current.APIKey = apiKey
	return current, nil
}

// Validate checks the current settings can run a cascade.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider is not configured", domain.ErrConfiguration)
	}
	if settings.Vision.Provider != "" && !settings.Vision.IsConfigured() {
		return fmt.Errorf("%w: vision provider %s is missing an API key", domain.ErrConfiguration, settings.Vision.Provider)
	}
	return settings.Extraction.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getPositiveFloat(key string) (float64, bool) {
	if _, exists := s.configStore.Get(key); !exists {
		return 0, false
	}
	v := s.configStore.GetFloat(key)
	return v, v > 0
}

func (s *SettingsService) getWeight(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	v := s.configStore.GetFloat(key)
	if v < 0 {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	n := s.configStore.GetInt(key)
	if n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * unit
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
