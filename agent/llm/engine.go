package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
	"golang.org/x/sync/semaphore"
)

var ErrEngineClosed = errors.New("inference engine is closed")

var _ contractx.ModelInference = (*Engine)(nil)

// Engine is the process-wide inference handle. Each worker slot allows one
// blocking Generate call in flight.
type Engine struct {
	chat    model.BaseChatModel
	slots   *semaphore.Weighted
	workers int64

	closed    atomic.Bool
	closeOnce sync.Once
}

// Open builds the chat model for the configured provider and wraps it in an Engine.
func Open(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		chat model.BaseChatModel
		err  error
	)
	switch cfg.provider() {
	case ProviderGemini:
		gcfg := cfg.Gemini()
		chat, err = gcfg.New(ctx)
	default:
		lcfg := cfg.LlamaCpp()
		chat, err = lcfg.New(ctx)
	}
	if err != nil {
		return nil, err
	}

	logx.Info().
		Str("provider", cfg.provider()).
		Str("model", cfg.Model).
		Int("workers", cfg.Workers).
		Msg("inference engine ready")
	return NewEngine(chat, cfg.Workers)
}

func NewEngine(chat model.BaseChatModel, workers int) (*Engine, error) {
	if chat == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		chat:    chat,
		slots:   semaphore.NewWeighted(int64(workers)),
		workers: int64(workers),
	}, nil
}

// Complete waits for a free slot and generates a single reply for prompt.
func (e *Engine) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if e.closed.Load() {
		return "", fmt.Errorf("%w: %w", contractx.ErrInference, ErrEngineClosed)
	}
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: wait for worker slot: %w", contractx.ErrInference, err)
	}
	defer e.slots.Release(1)

	if e.closed.Load() {
		return "", fmt.Errorf("%w: %w", contractx.ErrInference, ErrEngineClosed)
	}

	msg, err := e.chat.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithMaxTokens(maxTokens),
		model.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%w: generate: %w", contractx.ErrInference, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: model returned no message", contractx.ErrInference)
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: model returned empty content", contractx.ErrInference)
	}
	return content, nil
}

// Close rejects new calls and waits for in-flight ones to finish. It is safe to
// call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if err := e.slots.Acquire(context.Background(), e.workers); err == nil {
			e.slots.Release(e.workers)
		}
	})
	return nil
}
