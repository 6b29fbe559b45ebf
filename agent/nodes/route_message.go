package pipelinenode

import (
	"context"
	"errors"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

var ErrNoState = errors.New("pipeline state is nil")

func RouteMessage(ctx context.Context, in *GraphState, router contractx.Router) (*GraphState, error) {
	if in == nil {
		return nil, ErrNoState
	}

	decision, trace := router.Route(ctx, in.Message)
	in.Decision = decision
	in.Workflow = append(in.Workflow, trace)
	return in, nil
}
