package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rafeyshell/internal/logging"
)

// ErrNotConfigured is returned when config.json is missing or unreadable.
var ErrNotConfigured = errors.New("configuration not found. Run: rafey config")

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderProxy  = "proxy"
)

// Default model per provider.
var DefaultModels = map[string]string{
	ProviderGemini: "gemini-1.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderProxy:  "",
}

const defaultRequestTimeout = 2 * time.Minute

// UserConfig holds ALL rafey-shell configuration from ~/.rafey-shell/config.json.
type UserConfig struct {
	// =========================================================================
	// LLM BACKEND
	// =========================================================================

	// Provider selection (gemini, openai, proxy). Empty means auto-detect.
	Provider string `json:"provider,omitempty"`

	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// Optional model override
	Model string `json:"model,omitempty"`

	// Proxy endpoint (provider=proxy)
	ProxyURL   string `json:"proxy_url,omitempty"`
	ProxyToken string `json:"proxy_token,omitempty"`

	// Per-query deadline as a Go duration ("90s", "2m")
	RequestTimeout string `json:"request_timeout,omitempty"`

	// =========================================================================
	// PROFILE
	// =========================================================================

	UserProfile UserProfile `json:"user_profile"`

	// =========================================================================
	// SUBSYSTEMS
	// =========================================================================

	History *HistoryConfig `json:"history,omitempty"`
	Logging *LoggingConfig `json:"logging,omitempty"`
	UX      *UXConfig      `json:"ux,omitempty"`
}

// HistoryConfig selects the conversation history backend.
type HistoryConfig struct {
	Backend string `json:"backend,omitempty"` // "json" (default) or "sqlite"
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Level      string          `json:"level,omitempty"`
	Categories map[string]bool `json:"categories,omitempty"`
}

// ThemeAuto detects the palette from the terminal.
const ThemeAuto = "auto"

// UXConfig holds terminal presentation settings.
type UXConfig struct {
	RevealDelayMs int    `json:"reveal_delay_ms,omitempty"`
	Theme         string `json:"theme,omitempty"` // "light", "dark" or "auto"
}

// Options converts to the logging package's mirror type.
func (l LoggingConfig) Options() logging.Options {
	return logging.Options{
		DebugMode:  l.DebugMode,
		Level:      l.Level,
		Categories: l.Categories,
	}
}

// DefaultUserConfig returns a config with the default profile and no keys.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{UserProfile: DefaultProfile()}
}

// LoadUserConfig reads config.json. A missing or unparseable file is
// reported as ErrNotConfigured so the caller can point at the setup wizard.
func LoadUserConfig(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	cfg := &UserConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrNotConfigured, path, err)
	}
	cfg.UserProfile = cfg.UserProfile.Normalized()

	return cfg, nil
}

// Save writes the config with owner-only permissions since it holds API keys.
func (c *UserConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// GetActiveProvider resolves the backend and its credential.
// Priority: explicit provider > gemini key > openai key > proxy url > gemini.
func (c *UserConfig) GetActiveProvider() (provider string, credential string) {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case ProviderGemini:
		return ProviderGemini, c.GeminiAPIKey
	case ProviderOpenAI:
		return ProviderOpenAI, c.OpenAIAPIKey
	case ProviderProxy:
		return ProviderProxy, c.ProxyToken
	}

	switch {
	case c.GeminiAPIKey != "":
		return ProviderGemini, c.GeminiAPIKey
	case c.OpenAIAPIKey != "":
		return ProviderOpenAI, c.OpenAIAPIKey
	case c.ProxyURL != "":
		return ProviderProxy, c.ProxyToken
	}
	return ProviderGemini, ""
}

// GetModel returns the configured model or the provider default.
func (c *UserConfig) GetModel(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModels[provider]
}

// GetRequestTimeout parses RequestTimeout, falling back to two minutes.
func (c *UserConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == "" {
		return defaultRequestTimeout
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}

// GetHistory returns the history config with defaults.
func (c *UserConfig) GetHistory() HistoryConfig {
	if c.History == nil || c.History.Backend == "" {
		return HistoryConfig{Backend: "json"}
	}
	return HistoryConfig{Backend: strings.ToLower(c.History.Backend)}
}

// GetLogging returns the logging config (disabled by default).
func (c *UserConfig) GetLogging() LoggingConfig {
	if c.Logging == nil {
		return LoggingConfig{Level: "info"}
	}
	cfg := *c.Logging
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// GetUX returns UX settings with defaults applied.
func (c *UserConfig) GetUX() UXConfig {
	ux := UXConfig{RevealDelayMs: 50, Theme: ThemeAuto}
	if c.UX == nil {
		return ux
	}
	// negative disables the reveal
	if c.UX.RevealDelayMs != 0 {
		ux.RevealDelayMs = max(c.UX.RevealDelayMs, 0)
	}
	if c.UX.Theme != "" {
		ux.Theme = c.UX.Theme
	}
	return ux
}

// RevealDelay is the pause between revealed words.
func (u UXConfig) RevealDelay() time.Duration {
	return time.Duration(u.RevealDelayMs) * time.Millisecond
}
