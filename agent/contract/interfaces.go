package contract

import "context"

type WeatherService interface {
	Lookup(ctx context.Context, location string) (WeatherReport, error)
}

type NewsService interface {
	Search(ctx context.Context, topic string) ([]Article, error)
}

// ModelInference is the blocking completion capability of a language model.
type ModelInference interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

type Responder interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
