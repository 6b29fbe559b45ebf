// Package pipelinenode holds the per-request pipeline steps wired into
// the orchestrator graph. Each node advances the shared GraphState and
// appends its agent's trace step.
package pipelinenode

import (
	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

// GraphInput enters the pipeline after transport-level validation.
type GraphInput struct {
	Message contractx.Message
}

// GraphOutput leaves the pipeline as the final chat result.
type GraphOutput struct {
	Result contractx.ChatResult
}

// GraphState is the request-scoped state threaded through the pipeline.
// Workflow is append-only; steps are added in invocation order and never
// mutated afterwards.
type GraphState struct {
	Message contractx.Message

	Decision        contractx.RouteDecision
	TechnicalAnswer string
	Facts           []contractx.RetrievedFact
	FinalAnswer     string

	Workflow []contractx.AgentStepTrace
}

// Begin seeds the state for one request.
func Begin(in GraphInput) (*GraphState, error) {
	return &GraphState{Message: in.Message}, nil
}
