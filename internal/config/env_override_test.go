package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestApplyEnv_OverridesFile(t *testing.T) {
	cfg := &UserConfig{GeminiAPIKey: "file-key", Model: "file-model"}
	cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvGeminiAPIKey: "env-key",
		EnvGeminiModel:  "gemini-2.0-flash",
		EnvProxyURL:     "https://proxy.example/api/chat",
	}))

	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, "https://proxy.example/api/chat", cfg.ProxyURL)
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := &UserConfig{GeminiAPIKey: "file-key"}
	cfg.ApplyEnv(lookupFrom(map[string]string{EnvGeminiAPIKey: ""}))
	assert.Equal(t, "file-key", cfg.GeminiAPIKey)
}

func TestApplyEnv_ModelPrecedence(t *testing.T) {
	cfg := &UserConfig{GeminiAPIKey: "k"}
	cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvGeminiModel: "gemini-a",
		EnvModel:       "gemini-b",
	}))
	assert.Equal(t, "gemini-b", cfg.Model)
}

func TestApplyEnv_GeminiModelIgnoredForOpenAI(t *testing.T) {
	cfg := &UserConfig{OpenAIAPIKey: "sk"}
	cfg.ApplyEnv(lookupFrom(map[string]string{EnvGeminiModel: "gemini-a"}))
	assert.Empty(t, cfg.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel(ProviderOpenAI))
}

func TestApplyEnv_ProviderSwitch(t *testing.T) {
	cfg := &UserConfig{GeminiAPIKey: "gm"}
	cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvProvider:   "proxy",
		EnvProxyToken: "shared",
	}))

	provider, cred := cfg.GetActiveProvider()
	assert.Equal(t, ProviderProxy, provider)
	assert.Equal(t, "shared", cred)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Missing file is fine.
	require.NoError(t, LoadDotEnv())

	t.Setenv(EnvOpenAIAPIKey, "already-set")
	content := "RAFEY_SHELL_MODEL=from-dotenv\nOPENAI_API_KEY=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0600))
	t.Cleanup(func() { _ = os.Unsetenv(EnvModel) })

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "from-dotenv", os.Getenv(EnvModel))
	assert.Equal(t, "already-set", os.Getenv(EnvOpenAIAPIKey), "dotenv must not override the environment")
}
