package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/vocab"
)

const (
	agentName = "router"

	// fallbackConfidence is used whenever the model path fails or the
	// model does not report a usable confidence.
	fallbackConfidence = 0.5
)

// Agent decides which specialist should handle an incoming message. It
// tries deterministic vocabulary matching first and only consults the
// model for ambiguous messages.
type Agent struct {
	runner compose.Runnable[map[string]any, classification]
}

var _ contractx.Router = (*Agent)(nil)

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Agent, error) {
	if chatModel == nil {
		return nil, errors.New("router: chat model is required")
	}
	runner, err := compileClassificationGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return &Agent{runner: runner}, nil
}

func (a *Agent) Route(ctx context.Context, msg contractx.Message) (contractx.RouteDecision, contractx.AgentStepTrace) {
	text := msg.Trimmed()

	if decision, ok := a.routeByVocabulary(text); ok {
		return decision, traceFor(decision, "keyword")
	}

	decision, err := a.routeByModel(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("user_id", msg.UserID).Msg("router model classification failed, using fallback")
		decision = fallbackDecision("model classification unavailable, defaulting to knowledge agent")
	}
	return decision, traceFor(decision, "model")
}

// routeByVocabulary resolves messages that contain an unambiguous
// intent phrase without spending a model call.
func (a *Agent) routeByVocabulary(text string) (contractx.RouteDecision, bool) {
	if phrase, ok := vocab.MatchesSupportPhrase(text); ok {
		return contractx.RouteDecision{
			Target:     contractx.TargetSupport,
			Reasoning:  fmt.Sprintf("message contains support intent phrase %q", phrase),
			Confidence: 1.0,
			Priority:   contractx.PriorityHigh,
			Context: map[string]any{
				"user_intent": "account_support",
				"query_type":  "support",
			},
		}, true
	}

	phrase, matched := vocab.MatchesKnowledgePhrase(text)
	if !matched {
		phrase, matched = vocab.MatchesPricing(text)
	}
	if !matched {
		phrase, matched = vocab.MatchesProduct(text)
	}
	if matched {
		return contractx.RouteDecision{
			Target:     contractx.TargetKnowledge,
			Reasoning:  fmt.Sprintf("message contains product or pricing term %q", phrase),
			Confidence: 1.0,
			Priority:   contractx.PriorityMedium,
			Context: map[string]any{
				"user_intent": "product_information",
				"query_type":  "knowledge",
			},
		}, true
	}

	return contractx.RouteDecision{}, false
}

func (a *Agent) routeByModel(ctx context.Context, text string) (contractx.RouteDecision, error) {
	payload, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("marshal classification input: %w", err)
	}

	out, err := a.runner.Invoke(ctx, map[string]any{"input": string(payload)})
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("%w: invoke classification graph: %v", contractx.ErrUpstream, err)
	}

	target, ok := parseTarget(out.Agent)
	if !ok {
		return contractx.RouteDecision{}, fmt.Errorf("classification returned unknown agent %q", out.Agent)
	}

	reasoning := strings.TrimSpace(out.Reasoning)
	if reasoning == "" {
		reasoning = "model classification"
	}

	return contractx.RouteDecision{
		Target:     target,
		Reasoning:  reasoning,
		Confidence: clampConfidence(out.Confidence),
		Priority:   parsePriority(out.Priority),
		Context:    out.Context,
	}, nil
}

func fallbackDecision(reasoning string) contractx.RouteDecision {
	return contractx.RouteDecision{
		Target:     contractx.TargetKnowledge,
		Reasoning:  reasoning,
		Confidence: fallbackConfidence,
		Priority:   contractx.PriorityMedium,
		Context: map[string]any{
			"user_intent": "unknown",
			"query_type":  "knowledge",
		},
	}
}

func traceFor(decision contractx.RouteDecision, classifier string) contractx.AgentStepTrace {
	trace := contractx.NewStepTrace(agentName).WithConfidence(decision.Confidence)
	trace.ToolCalls["route_analysis"] = contractx.ToolResult{
		"success":    true,
		"target":     string(decision.Target),
		"reasoning":  decision.Reasoning,
		"priority":   string(decision.Priority),
		"classifier": classifier,
	}
	return trace
}

func parseTarget(raw string) (contractx.RouteTarget, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(contractx.TargetKnowledge):
		return contractx.TargetKnowledge, true
	case string(contractx.TargetSupport):
		return contractx.TargetSupport, true
	default:
		return "", false
	}
}

func parsePriority(raw string) contractx.Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(contractx.PriorityHigh):
		return contractx.PriorityHigh
	case string(contractx.PriorityLow):
		return contractx.PriorityLow
	default:
		return contractx.PriorityMedium
	}
}

func clampConfidence(c float64) float64 {
	if c <= 0 {
		return fallbackConfidence
	}
	if c > 1 {
		return 1
	}
	return c
}
