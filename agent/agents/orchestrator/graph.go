package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Personal-Assistant/agent/nodes/orchestrator"
)

func (o *Orchestrator) compileDispatchGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeClassify,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.Classify(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeClassify, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeHandleCapability,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.HandleCapability(ctx, in, o.execute)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeHandleCapability, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeInfer,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Infer(ctx, in, o.responder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeInfer, err)
	}

	branch := compose.NewGraphBranch(nodex.Route, map[string]bool{
		nodex.NodeHandleCapability: true,
		nodex.NodeInfer:            true,
	})
	if err := graph.AddBranch(nodex.NodeClassify, branch); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodex.NodeClassify, err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeClassify},
		{nodex.NodeHandleCapability, compose.END},
		{nodex.NodeInfer, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.dispatch"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
