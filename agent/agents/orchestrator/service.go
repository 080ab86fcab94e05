package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	nodex "github.com/tanpawarit/Chative-Personal-Assistant/agent/nodes/orchestrator"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/tool"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
)

// Reply is the single response of one dispatch cycle.
type Reply struct {
	RequestID  string
	Text       string
	Capability contractx.Capability
	Outcome    nodex.Outcome
}

// Orchestrator routes each prompt to a capability handler or to the fallback
// responder. Dispatch cycles share no mutable state and may run concurrently.
type Orchestrator struct {
	execute   tool.Executor
	responder contractx.Responder

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

func New(responder contractx.Responder, services tool.Services) (*Orchestrator, error) {
	return NewWithExecutor(responder, tool.NewExecutor(services))
}

func NewWithExecutor(responder contractx.Responder, execute tool.Executor) (*Orchestrator, error) {
	if responder == nil {
		return nil, errors.New("fallback responder is required")
	}
	if execute == nil {
		return nil, errors.New("capability executor is required")
	}

	o := &Orchestrator{
		execute:   execute,
		responder: responder,
		now:       time.Now,
		newID:     uuid.NewString,
	}

	graphRunner, err := o.compileDispatchGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one dispatch cycle. Inference failures wrap
// contract.ErrInference and any other pipeline failure wraps contract.ErrDispatch;
// capability failures come back as apology text.
func (o *Orchestrator) HandleMessage(ctx context.Context, prompt string) (Reply, error) {
	requestID := o.newID()
	started := o.now()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		RequestID: requestID,
		Prompt:    prompt,
	})
	elapsed := o.now().Sub(started)
	if err != nil {
		outcome := "inference_error"
		if !errors.Is(err, contractx.ErrInference) {
			outcome = "internal_error"
			err = fmt.Errorf("%w: %v", contractx.ErrDispatch, err)
		}
		logx.Error().
			Err(err).
			Str("request_id", requestID).
			Str("outcome", outcome).
			Dur("duration", elapsed).
			Msg("dispatch failed")
		return Reply{}, err
	}

	event := logx.Info()
	if out.Err != nil {
		event = logx.Warn().Err(out.Err)
	}
	event.
		Str("request_id", requestID).
		Str("capability", out.Capability.String()).
		Str("outcome", string(out.Outcome)).
		Dur("duration", elapsed).
		Msg("dispatch completed")

	return Reply{
		RequestID:  requestID,
		Text:       out.Reply,
		Capability: out.Capability,
		Outcome:    out.Outcome,
	}, nil
}

// Dispatch returns only the response text of HandleMessage.
func (o *Orchestrator) Dispatch(ctx context.Context, prompt string) (string, error) {
	reply, err := o.HandleMessage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}
