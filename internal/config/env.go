package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read at startup.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
	EnvModel        = "RAFEY_SHELL_MODEL"
	EnvProxyURL     = "RAFEY_SHELL_API_URL"
	EnvProvider     = "RAFEY_SHELL_PROVIDER"
	EnvProxyToken   = "RAFEY_PROXY_TOKEN"
)

// DotEnvFile is loaded from the working directory when present.
const DotEnvFile = ".env.local"

// LoadDotEnv loads .env.local without overriding variables already set.
func LoadDotEnv() error {
	if err := godotenv.Load(DotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}
	return nil
}

// ApplyEnvOverrides applies process environment variables on top of the file.
func (c *UserConfig) ApplyEnvOverrides() {
	c.ApplyEnv(os.LookupEnv)
}

// ApplyEnv applies overrides from lookup. Environment wins over the file.
// GEMINI_MODEL only applies to the gemini provider; RAFEY_SHELL_MODEL wins over it.
func (c *UserConfig) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.GeminiAPIKey, EnvGeminiAPIKey)
	set(&c.OpenAIAPIKey, EnvOpenAIAPIKey)
	set(&c.ProxyURL, EnvProxyURL)
	set(&c.ProxyToken, EnvProxyToken)
	set(&c.Provider, EnvProvider)
	if provider, _ := c.GetActiveProvider(); provider == ProviderGemini {
		set(&c.Model, EnvGeminiModel)
	}
	set(&c.Model, EnvModel)
}
