package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRate          = "llm.requests_per_second"
	keySimThreshold     = "similarity.threshold"
	keySimWindow        = "similarity.candidate_window"
	keySimMatchKeywords = "similarity.match_keywords"
	keyJanitorEnabled   = "janitor.enabled"
	keyJanitorTTL       = "janitor.ttl"
	keyJanitorInterval  = "janitor.interval"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRate),
		},
		Similarity: domain.SimilaritySettings{
			Threshold:       s.getFloat(keySimThreshold, defaults.Similarity.Threshold),
			CandidateWindow: s.getInt(keySimWindow, defaults.Similarity.CandidateWindow),
			MatchKeywords:   s.getBool(keySimMatchKeywords, defaults.Similarity.MatchKeywords),
		},
		Janitor: domain.JanitorSettings{
			Enabled:  s.getBool(keyJanitorEnabled, defaults.Janitor.Enabled),
			TTL:      s.getDuration(keyJanitorTTL, defaults.Janitor.TTL),
			Interval: s.getDuration(keyJanitorInterval, defaults.Janitor.Interval),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.LLM.RequestsPerSecond > 0 {
		if err := s.configStore.Set(keyLLMRate, settings.LLM.RequestsPerSecond); err != nil {
			return fmt.Errorf("save llm requests_per_second: %w", err)
		}
	}

	// Save similarity policy
	if err := s.configStore.Set(keySimThreshold, settings.Similarity.Threshold); err != nil {
		return fmt.Errorf("save similarity threshold: %w", err)
	}
	if err := s.configStore.Set(keySimWindow, settings.Similarity.CandidateWindow); err != nil {
		return fmt.Errorf("save similarity candidate_window: %w", err)
	}
	if err := s.configStore.Set(keySimMatchKeywords, settings.Similarity.MatchKeywords); err != nil {
		return fmt.Errorf("save similarity match_keywords: %w", err)
	}

	// Save janitor settings
	if err := s.configStore.Set(keyJanitorEnabled, settings.Janitor.Enabled); err != nil {
		return fmt.Errorf("save janitor enabled: %w", err)
	}
	if err := s.configStore.Set(keyJanitorTTL, settings.Janitor.TTL.String()); err != nil {
		return fmt.Errorf("save janitor ttl: %w", err)
	}
	if err := s.configStore.Set(keyJanitorInterval, settings.Janitor.Interval.String()); err != nil {
		return fmt.Errorf("save janitor interval: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the configured providers can drive a run.
// Segmentation and keyword extraction always need an LLM; the vector
// similarity store additionally needs an embedding provider.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider must be configured to process text", domain.ErrLLMUnavailable)
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider must be configured for duplicate detection",
			domain.ErrEmbeddingUnavailable)
	}

	if settings.Similarity.Threshold <= 0 || settings.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", settings.Similarity.Threshold)
	}
	if settings.Similarity.CandidateWindow <= 0 {
		return fmt.Errorf("similarity candidate window must be positive, got %d", settings.Similarity.CandidateWindow)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
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

// SimilarityPolicy returns the configured duplicate detection policy.
func (s *SettingsService) SimilarityPolicy() driven.SimilarityPolicy {
	settings, err := s.Get()
	if err != nil {
		return driven.DefaultSimilarityPolicy()
	}
	return driven.SimilarityPolicy{
		Threshold:       settings.Similarity.Threshold,
		CandidateWindow: settings.Similarity.CandidateWindow,
		MatchKeywords:   settings.Similarity.MatchKeywords,
	}
}

// JanitorConfig returns the configured abandoned-run cleanup policy.
func (s *SettingsService) JanitorConfig() JanitorConfig {
	settings, err := s.Get()
	if err != nil {
		return DefaultJanitorConfig()
	}
	return JanitorConfig{
		Enabled:  settings.Janitor.Enabled,
		TTL:      settings.Janitor.TTL,
		Interval: settings.Janitor.Interval,
	}
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
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
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

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
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
