// Package personality rewrites technical answers into conversational
// ones without changing the facts they state.
package personality

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

const (
	agentName = "personality"

	// rewriteTemperature is deliberately high; the rewrite should vary
	// in tone while the facts stay fixed.
	rewriteTemperature = 0.8
)

// numericToken matches percentages, currency amounts, and plain numbers.
// Every token present in the technical answer must survive the rewrite.
var numericToken = regexp.MustCompile(`(?:R\$|US\$|USD|BRL|\$)\s?\d+(?:[.,]\d+)*|\d+(?:[.,]\d+)*\s?%|\d+(?:[.,]\d+)*`)

// Agent enhances answers via the completion client and falls back to
// the unmodified technical answer when the rewrite fails or drops facts.
type Agent struct {
	completion   contractx.CompletionClient
	systemPrompt string
}

var _ contractx.PersonalityAgent = (*Agent)(nil)

func New(completion contractx.CompletionClient, systemPrompt string) *Agent {
	return &Agent{completion: completion, systemPrompt: systemPrompt}
}

func (a *Agent) Enhance(ctx context.Context, technicalAnswer string, original contractx.Message) (string, contractx.AgentStepTrace) {
	trace := contractx.NewStepTrace(agentName)

	enhanced, err := a.completion.Complete(ctx, a.systemPrompt, rewritePrompt(technicalAnswer, original.Trimmed()), rewriteTemperature)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		log.Debug().Err(err).Msg("personality rewrite failed, keeping technical answer")
		trace.ToolCalls["personality_enhancement"] = contractx.ToolResult{
			"success":                 false,
			"personality_enhancement": false,
		}
		return technicalAnswer, trace
	}

	if missing := missingNumericTokens(technicalAnswer, enhanced); len(missing) > 0 {
		log.Debug().Strs("missing", missing).Msg("rewrite dropped numeric facts, keeping technical answer")
		trace.ToolCalls["personality_enhancement"] = contractx.ToolResult{
			"success":                 false,
			"personality_enhancement": false,
			"dropped_tokens":          len(missing),
		}
		return technicalAnswer, trace
	}

	trace.ToolCalls["personality_enhancement"] = contractx.ToolResult{
		"success":                 true,
		"personality_enhancement": true,
	}
	return enhanced, trace
}

// missingNumericTokens lists numeric facts present in the technical
// answer but absent from the rewrite.
func missingNumericTokens(technicalAnswer, enhanced string) []string {
	var missing []string
	for _, token := range numericToken.FindAllString(technicalAnswer, -1) {
		if !strings.Contains(enhanced, token) {
			missing = append(missing, token)
		}
	}
	return missing
}

func rewritePrompt(technicalAnswer, originalMessage string) string {
	var sb strings.Builder
	sb.WriteString("Original customer message: ")
	sb.WriteString(originalMessage)
	sb.WriteString("\n\nTechnical answer to rewrite:\n")
	sb.WriteString(technicalAnswer)
	sb.WriteString("\n\nRewrite the technical answer in a warm, conversational tone. ")
	sb.WriteString("Reply in the same language as the customer message. ")
	sb.WriteString("Keep every number, rate, and amount exactly as written. ")
	sb.WriteString("Do not add facts that are not in the technical answer.")
	return sb.String()
}
