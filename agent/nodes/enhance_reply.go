package pipelinenode

import (
	"context"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

func EnhanceReply(ctx context.Context, in *GraphState, personality contractx.PersonalityAgent) (*GraphState, error) {
	if in == nil {
		return nil, ErrNoState
	}

	answer, trace := personality.Enhance(ctx, in.TechnicalAnswer, in.Message)
	in.FinalAnswer = answer
	in.Workflow = append(in.Workflow, trace)
	return in, nil
}
