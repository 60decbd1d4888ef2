// internal/generation/config.go
package generation

import (
	"time"

	"support-chatbot/internal/common/config"
)

type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	Temperature      float64
	MaxTokens        int
	Timeout          time.Duration
	MaxRetries       int
	MaxContextTokens int
}

func NewConfig(appConfig *config.Config) *Config {
	g := appConfig.Generation
	return &Config{
		BaseURL:          g.BaseURL,
		APIKey:           g.APIKey,
		Model:            g.Model,
		Temperature:      g.Temperature,
		MaxTokens:        g.MaxTokens,
		Timeout:          time.Duration(g.Timeout) * time.Millisecond,
		MaxRetries:       g.MaxRetries,
		MaxContextTokens: g.MaxContextTokens,
	}
}
