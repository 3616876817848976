// Package agent routes prompts to an LLM provider chosen by config/models.yaml.
package agent

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v2"

	"strategic_finance/pkg/core/llm"
	"strategic_finance/pkg/core/logger"
)

// Provider names understood by DefaultProviders.
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
	Providers      map[string]ModelConfig `yaml:"providers"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Description string `yaml:"description"`
}

// ModelConfig pins a model and endpoint per provider.
type ModelConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LoadConfig reads a models.yaml file. A missing file yields the offline
// provider so the service still starts without credentials.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{ActiveProvider: ProviderOffline}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = ProviderOffline
	}
	return cfg, nil
}

// Credentials carries API keys from config.Settings.
type Credentials struct {
	OpenAIAPIKey string
	GeminiAPIKey string
}

// DefaultProviders builds the provider set named in Config.Providers.
func DefaultProviders(cfg Config, creds Credentials) map[string]llm.Provider {
	return map[string]llm.Provider{
		ProviderOpenAI: &llm.OpenAIProvider{
			APIKey:  creds.OpenAIAPIKey,
			BaseURL: cfg.Providers[ProviderOpenAI].BaseURL,
			Model:   cfg.Providers[ProviderOpenAI].Model,
		},
		ProviderGemini: &llm.GeminiProvider{
			APIKey: creds.GeminiAPIKey,
			Model:  cfg.Providers[ProviderGemini].Model,
		},
		ProviderOffline: llm.NewOfflineProvider(),
	}
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	log       logger.Logger
}

// NewManager copies providers and always registers the offline provider.
func NewManager(config Config, providers map[string]llm.Provider, log logger.Logger) *Manager {
	registered := make(map[string]llm.Provider, len(providers)+1)
	for name, p := range providers {
		registered[name] = p
	}
	if _, ok := registered[ProviderOffline]; !ok {
		registered[ProviderOffline] = llm.NewOfflineProvider()
	}
	return &Manager{
		config:    config,
		providers: registered,
		log:       log.With(map[string]interface{}{"component": "agent"}),
	}
}

// GetProvider resolves the provider for agentType: an agent-specific
// override first, then the active provider, then offline.
func (m *Manager) GetProvider(agentType string) (string, llm.Provider) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, p
	}
	return ProviderOffline, m.providers[ProviderOffline]
}

// ExecutePrompt handles instruction adaptation before sending to the model.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	name, provider := m.GetProvider(agentType)
	m.log.Debug("executing prompt", map[string]interface{}{
		"agent":    agentType,
		"provider": name,
	})

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	out, err := provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", name, err)
	}
	return out, nil
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.log.Info("global provider switched", map[string]interface{}{"provider": newProvider})
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists registered provider names in sorted order.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
