package config

import (
	"chart-analyzer/pkg/common"
	"chart-analyzer/pkg/config"
)

// AI selects the inference provider.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Anthropic holds the configuration for the Anthropic Messages API.
type Anthropic struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxTokens           int    `mapstructure:"max_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxOutputTokens     int    `mapstructure:"max_output_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OpenRouter holds the configuration for the OpenRouter chat completions API.
type OpenRouter struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxTokens           int    `mapstructure:"max_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Upload holds multipart parsing limits.
type Upload struct {
	MaxMemoryMB int64 `mapstructure:"max_memory_mb"`
	MaxBodyMB   int64 `mapstructure:"max_body_mb"`
}

// Telegram holds configuration for optional report delivery.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	TimeZone string `mapstructure:"time_zone"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App        config.App     `mapstructure:"app"`
	Logger     config.Logger  `mapstructure:"logger"`
	API        config.API     `mapstructure:"api"`
	Tracing    config.Tracing `mapstructure:"tracing"`
	AI         AI             `mapstructure:"ai"`
	Anthropic  Anthropic      `mapstructure:"anthropic"`
	Gemini     Gemini         `mapstructure:"gemini"`
	OpenRouter OpenRouter     `mapstructure:"openrouter"`
	Upload     Upload         `mapstructure:"upload"`
	Telegram   Telegram       `mapstructure:"telegram"`
}

// defaults are also the keys resolvable from the environment,
// e.g. ANTHROPIC_API_KEY or AI_PROVIDER.
var defaults = map[string]interface{}{
	"app.name":                          "chart-analyzer",
	"app.env":                           "development",
	"app.version":                       "1.0.0",
	"logger.level":                      "info",
	"logger.encoding":                   "json",
	"api.host":                          "0.0.0.0",
	"api.port":                          8080,
	"tracing.enabled":                   false,
	"tracing.service_name":              "chart-analyzer",
	"ai.provider":                       common.AIProviderAnthropic,
	"anthropic.api_key":                 "",
	"anthropic.base_url":                "",
	"anthropic.model":                   "claude-3-5-sonnet-20241022",
	"anthropic.max_tokens":              2000,
	"anthropic.max_request_per_minute":  0,
	"gemini.api_key":                    "",
	"gemini.model":                      "gemini-2.5-flash",
	"gemini.max_output_tokens":          2000,
	"gemini.max_request_per_minute":     0,
	"openrouter.api_key":                "",
	"openrouter.base_url":               "https://openrouter.ai/api/v1",
	"openrouter.model":                  "anthropic/claude-3.5-sonnet",
	"openrouter.max_tokens":             2000,
	"openrouter.max_request_per_minute": 0,
	"upload.max_memory_mb":              32,
	"upload.max_body_mb":                64,
	"telegram.enabled":                  false,
	"telegram.bot_token":                "",
	"telegram.chat_id":                  0,
	"telegram.time_zone":                "UTC",
}

// Load loads the analysis service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.AI.Provider {
	case common.AIProviderGemini:
		return c.Gemini.APIKey
	case common.AIProviderOpenRouter:
		return c.OpenRouter.APIKey
	default:
		return c.Anthropic.APIKey
	}
}
