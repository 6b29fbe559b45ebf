package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	nodex "github.com/agentswarm/agentswarm/agent/nodes"
)

func compileProcessGraph(
	ctx context.Context,
	router contractx.Router,
	knowledge contractx.KnowledgeAgent,
	support contractx.SupportAgent,
	personality contractx.PersonalityAgent,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("begin_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.Begin(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node begin_request: %w", err)
	}

	if err := graph.AddLambdaNode("route_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RouteMessage(ctx, in, router)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_message: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_agent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchAgent(ctx, in, knowledge, support)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_agent: %w", err)
	}

	if err := graph.AddLambdaNode("enhance_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.EnhanceReply(ctx, in, personality)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node enhance_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_result",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeResult(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_result: %w", err)
	}

	edges := [][2]string{
		{compose.START, "begin_request"},
		{"begin_request", "route_message"},
		{"route_message", "dispatch_agent"},
		{"dispatch_agent", "enhance_reply"},
		{"enhance_reply", "finalize_result"},
		{"finalize_result", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.process"))
	if err != nil {
		return nil, fmt.Errorf("compile pipeline graph: %w", err)
	}
	return runner, nil
}
