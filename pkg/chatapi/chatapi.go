package chatapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultBaseURL = "https://api.deepseek.com"

var ErrEmptyAPIKey = errors.New("chat api key is empty")

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config describes an OpenAI-compatible chat-completions endpoint.
type Config struct {
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken *int
	Temperature        float32
	Timeout            time.Duration
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	temperature := c.Temperature
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     c.baseURL(),
		APIKey:      apiKey,
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("chatapi: create chat model: %w", err)
	}

	return m, nil
}

func (c *Config) baseURL() string {
	if trimmed := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); trimmed != "" {
		return trimmed
	}
	return DefaultBaseURL
}

// NewClient creates an OpenAI SDK client for the same endpoint. It returns
// nil when no API key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL()),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// Ping checks that the credential is accepted and the model exists.
func Ping(ctx context.Context, client *openaisdk.Client, modelName string) error {
	if client == nil {
		return ErrEmptyAPIKey
	}
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return errors.New("chatapi: model name is empty")
	}

	m, err := client.Models.Get(ctx, modelName)
	if err != nil {
		return fmt.Errorf("chatapi: get model %s: %w", modelName, err)
	}
	if m.ID != modelName {
		return fmt.Errorf("chatapi: endpoint returned model %q, want %q", m.ID, modelName)
	}
	return nil
}
