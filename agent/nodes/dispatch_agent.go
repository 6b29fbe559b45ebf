package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

// DispatchAgent runs the specialist chosen by the route decision. Both
// specialists degrade internally, so this node only fails on an
// unrecognized target, which the router contract rules out.
func DispatchAgent(
	ctx context.Context,
	in *GraphState,
	knowledge contractx.KnowledgeAgent,
	support contractx.SupportAgent,
) (*GraphState, error) {
	if in == nil {
		return nil, ErrNoState
	}

	switch in.Decision.Target {
	case contractx.TargetKnowledge:
		answer, facts, trace := knowledge.Answer(ctx, in.Message)
		in.TechnicalAnswer = answer
		in.Facts = facts
		in.Workflow = append(in.Workflow, trace)
	case contractx.TargetSupport:
		answer, trace := support.Answer(ctx, in.Message)
		in.TechnicalAnswer = answer
		in.Workflow = append(in.Workflow, trace)
	default:
		return nil, fmt.Errorf("%w: unknown route target %q", contractx.ErrValidation, in.Decision.Target)
	}
	return in, nil
}
