package llm

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

type Budget struct {
	MaxTokens   int
	Temperature float32
}

var DefaultBudget = Budget{MaxTokens: 200, Temperature: 0.7}

var _ contractx.Responder = (*Responder)(nil)

// Responder answers prompts no capability handler claims, with a fixed budget.
type Responder struct {
	inference contractx.ModelInference
	budget    Budget
}

func NewResponder(inference contractx.ModelInference, budget Budget) *Responder {
	if budget.MaxTokens <= 0 {
		budget.MaxTokens = DefaultBudget.MaxTokens
	}
	return &Responder{inference: inference, budget: budget}
}

func (r *Responder) Complete(ctx context.Context, prompt string) (string, error) {
	return r.inference.Complete(ctx, prompt, r.budget.MaxTokens, r.budget.Temperature)
}
