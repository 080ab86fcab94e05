package orchestratornode

import (
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

const (
	NodeClassify         = "classify"
	NodeHandleCapability = "handle_capability"
	NodeInfer            = "infer"
)

// Outcome describes how a dispatch cycle produced its reply.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeClarified Outcome = "clarified"
	OutcomeApology   Outcome = "apology"
	OutcomeInferred  Outcome = "inferred"
)

type GraphInput struct {
	RequestID string
	Prompt    string
}

type GraphState struct {
	RequestID  string
	Prompt     string
	Capability contractx.Capability
	StartedAt  time.Time
}

type GraphOutput struct {
	RequestID  string
	Reply      string
	Capability contractx.Capability
	Outcome    Outcome
	// Err is the capability failure that was turned into an apology, if any.
	Err error
}
