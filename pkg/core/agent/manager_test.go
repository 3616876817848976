package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategic_finance/pkg/core/llm"
	"strategic_finance/pkg/core/logger"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
active_provider: gemini
agents:
  assumptions:
    provider: openai
    description: Extracts forecast assumptions
providers:
  openai:
    model: gpt-4o-mini
    base_url: https://gateway.internal/v1
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ActiveProvider)
	assert.Equal(t, "openai", cfg.Agents["assumptions"].Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers["openai"].Model)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderOffline, cfg.ActiveProvider)
}

func TestManager_Routing(t *testing.T) {
	providers := map[string]llm.Provider{
		"a": &llm.StaticProvider{Response: "from a"},
		"b": &llm.StaticProvider{Response: "from b"},
	}
	m := NewManager(Config{
		ActiveProvider: "a",
		Agents:         map[string]AgentConfig{"assumptions": {Provider: "b"}},
	}, providers, logger.NewTestLogger(t))

	out, err := m.ExecutePrompt(context.Background(), "assumptions", "q", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "from b", out)

	out, err = m.ExecutePrompt(context.Background(), "other", "q", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "from a", out)

	require.NoError(t, m.SetGlobalProvider("b"))
	assert.Equal(t, "b", m.GetActiveProvider())
	assert.Error(t, m.SetGlobalProvider("nope"))
	assert.Equal(t, []string{"a", "b", ProviderOffline}, m.Available())
}

func TestManager_UnknownActiveFallsBackToOffline(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "ghost"}, map[string]llm.Provider{}, logger.NewNoOpLogger())

	name, _ := m.GetProvider("assumptions")
	assert.Equal(t, ProviderOffline, name)

	_, err := m.ExecutePrompt(context.Background(), "assumptions", "q", "", nil)
	assert.ErrorIs(t, err, llm.ErrOffline)
}

func TestDefaultProviders(t *testing.T) {
	providers := DefaultProviders(Config{}, Credentials{})
	assert.Contains(t, providers, ProviderOpenAI)
	assert.Contains(t, providers, ProviderGemini)
	assert.Contains(t, providers, ProviderOffline)
}

func TestNewManager_NilProviders(t *testing.T) {
	m := NewManager(Config{}, nil, logger.NewNoOpLogger())
	assert.Equal(t, []string{ProviderOffline}, m.Available())
}

func TestNewManager_DoesNotMutateCallerMap(t *testing.T) {
	providers := map[string]llm.Provider{"a": &llm.StaticProvider{Response: "x"}}
	m := NewManager(Config{ActiveProvider: "a"}, providers, logger.NewNoOpLogger())

	assert.Len(t, providers, 1)
	assert.Equal(t, []string{"a", ProviderOffline}, m.Available())
}
