// Package llamacpp connects to a local OpenAI-compatible inference server such as
// llama.cpp's llama-server or LM Studio.
package llamacpp

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type ChatModelBuilder interface {
	New(ctx context.Context) (model.BaseChatModel, error)
}

var _ ChatModelBuilder = (*Config)(nil)

// DefaultAPIKey is accepted by llama-server when it runs without --api-key.
const DefaultAPIKey = "sk-no-key-required"

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func (c *Config) New(ctx context.Context) (model.BaseChatModel, error) {
	maxTokens := c.MaxTokens
	temperature := c.Temperature

	m, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		APIKey:      c.apiKey(),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("llamacpp: create chat model: %w", err)
	}
	return m, nil
}

func (c *Config) apiKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return DefaultAPIKey
}

// NewClient creates an OpenAI SDK client pointed at the local server.
func NewClient(cfg Config) *openaisdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey()),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, option.WithMaxRetries(0))

	client := openaisdk.NewClient(opts...)
	return &client
}

// Probe lists the served models and checks that the configured one is loaded.
// An empty model name only checks reachability.
func Probe(ctx context.Context, client *openaisdk.Client, modelName string) error {
	if client == nil {
		return fmt.Errorf("llamacpp: client is nil")
	}

	page, err := client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("llamacpp: list models: %w", err)
	}

	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil
	}
	for _, m := range page.Data {
		if m.ID == modelName {
			return nil
		}
	}
	return fmt.Errorf("llamacpp: model %q is not served", modelName)
}
