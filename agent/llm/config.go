package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	geminix "github.com/tanpawarit/Chative-Personal-Assistant/pkg/gemini"
	llamacppx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/llamacpp"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Provider    string        `envconfig:"PROVIDER" split_words:"true" default:"openai"`
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"http://127.0.0.1:8080/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" default:"sk-no-key-required"`
	Model       string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" split_words:"true" default:"200"`
	Temperature float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	Workers     int           `envconfig:"WORKERS" split_words:"true" default:"1"`
}

func (c Config) Validate() error {
	switch c.provider() {
	case ProviderOpenAI:
		if strings.TrimSpace(c.BaseURL) == "" {
			return fmt.Errorf("%w: llm base url is required", contractx.ErrValidation)
		}
	case ProviderGemini:
		if strings.TrimSpace(c.APIKey) == "" || c.APIKey == llamacppx.DefaultAPIKey {
			return fmt.Errorf("%w: gemini api key is required", contractx.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", contractx.ErrValidation, c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: llm max tokens must be positive", contractx.ErrValidation)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: llm workers must be positive", contractx.ErrValidation)
	}
	return nil
}

// Budget is the fixed generation budget of the fallback responder.
func (c Config) Budget() Budget {
	return Budget{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

func (c Config) LlamaCpp() llamacppx.Config {
	return llamacppx.Config{
		BaseURL:     strings.TrimSpace(c.BaseURL),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

func (c Config) Gemini() geminix.Config {
	return geminix.Config{
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

func (c Config) provider() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}
