// Package openrouter configures the OpenAI SDK client for the OpenRouter
// API, which serves the fallback intent classifier.
package openrouter

import (
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL     string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName    string        `envconfig:"SITE_NAME" split_words:"true"`
}

// NewClient builds an SDK client for cfg, or nil when no API key is set so
// callers can run without the fallback classifier.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}

	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	// OpenRouter attribution headers.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
