package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	chatapix "github.com/tanpawarit/mall-concierge/pkg/chatapi"
)

// Config is read with the LLM prefix. APIKey is optional at load time so the
// process can start and report a missing credential per request.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.deepseek.com"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"deepseek-chat"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"0"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	Preflight          bool          `envconfig:"PREFLIGHT" split_words:"true" default:"false"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2], got %v", contractx.ErrValidation, c.Temperature)
	}
	if c.MaxCompletionToken < 0 {
		return fmt.Errorf("%w: max completion token must not be negative", contractx.ErrValidation)
	}
	return nil
}

// CheckCredential reports ErrMissingCredential when no API key is set.
func (c Config) CheckCredential() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set LLM_API_KEY", contractx.ErrMissingCredential)
	}
	return nil
}

func (c Config) ChatAPI() chatapix.Config {
	cfg := chatapix.Config{
		BaseURL:     strings.TrimSpace(c.BaseURL),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
	if c.MaxCompletionToken > 0 {
		maxCompletionToken := c.MaxCompletionToken
		cfg.MaxCompletionToken = &maxCompletionToken
	}
	return cfg
}
