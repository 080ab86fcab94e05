package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/tool"
)

// HandleCapability runs extraction and the capability handler inside a failure
// boundary. It never returns an error: every failure, panics included, becomes
// the apology reply.
func HandleCapability(ctx context.Context, in *GraphState, execute tool.Executor) (out GraphOutput, err error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	out = GraphOutput{RequestID: in.RequestID, Capability: in.Capability}
	defer func() {
		if r := recover(); r != nil {
			out.Reply = Apology(in.Capability)
			out.Outcome = OutcomeApology
			out.Err = fmt.Errorf("capability=%s handler panicked: %v", in.Capability, r)
			err = nil
		}
	}()

	reply, execErr := execute(ctx, in.Capability, in.Prompt)
	if execErr != nil {
		out.Reply = Apology(in.Capability)
		out.Outcome = OutcomeApology
		out.Err = execErr
		return out, nil
	}

	out.Reply = reply
	out.Outcome = OutcomeHandled
	if reply == tool.WeatherClarification || reply == tool.NewsClarification {
		out.Outcome = OutcomeClarified
	}
	return out, nil
}

func Apology(capability contractx.Capability) string {
	return fmt.Sprintf("I encountered an issue trying to fetch %s data. Please try again later.", capability)
}
