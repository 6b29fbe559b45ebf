package pipelinenode

import (
	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

func FinalizeResult(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNoState
	}

	return GraphOutput{
		Result: contractx.ChatResult{
			Response:            in.FinalAnswer,
			SourceAgentResponse: in.TechnicalAnswer,
			AgentWorkflow:       in.Workflow,
		},
	}, nil
}
