package orchestratornode

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/intent"
)

// Classify decides the capability once. The prompt is carried through unchanged.
func Classify(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	return &GraphState{
		RequestID:  in.RequestID,
		Prompt:     in.Prompt,
		Capability: intent.Classify(in.Prompt),
		StartedAt:  nowFn().UTC(),
	}, nil
}

// Route sends tool capabilities to the handler and everything else to inference.
func Route(_ context.Context, in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Capability.IsTool() {
		return NodeHandleCapability, nil
	}
	return NodeInfer, nil
}
