package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

// Infer sends the raw prompt to the fallback responder. Failures propagate as
// contract.ErrInference.
func Infer(ctx context.Context, in *GraphState, responder contractx.Responder) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := responder.Complete(ctx, in.Prompt)
	if err != nil {
		if errors.Is(err, contractx.ErrInference) {
			return GraphOutput{}, err
		}
		return GraphOutput{}, fmt.Errorf("%w: %v", contractx.ErrInference, err)
	}

	return GraphOutput{
		RequestID:  in.RequestID,
		Reply:      reply,
		Capability: in.Capability,
		Outcome:    OutcomeInferred,
	}, nil
}
