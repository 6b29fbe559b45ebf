// Package knowledge answers product and pricing questions from the
// semantic index, falling back to external web search when the index
// has nothing relevant.
package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/pricing"
	"github.com/agentswarm/agentswarm/agent/vocab"
)

const (
	agentName = "knowledge"

	// DefaultMinRelevance is the lowest similarity score an index hit
	// may have and still count as a usable fact.
	DefaultMinRelevance = 0.3

	// DefaultTopK bounds both index and search retrieval.
	DefaultTopK = 3

	compositionTemperature = 0.3

	fallbackAnswer = "I could not retrieve the information you asked for right now. " +
		"Please try again in a moment or rephrase your question."
)

// Agent retrieves facts and composes a technical answer. It never
// returns an error; retrieval failures degrade to a fallback answer.
type Agent struct {
	index        contractx.SemanticIndex
	search       contractx.SearchAdapter
	completion   contractx.CompletionClient
	extractor    *pricing.Extractor
	systemPrompt string
	minRelevance float64
	topK         int
}

var _ contractx.KnowledgeAgent = (*Agent)(nil)

type Option func(*Agent)

func WithMinRelevance(min float64) Option {
	return func(a *Agent) { a.minRelevance = min }
}

func WithTopK(k int) Option {
	return func(a *Agent) { a.topK = k }
}

func New(
	index contractx.SemanticIndex,
	search contractx.SearchAdapter,
	completion contractx.CompletionClient,
	extractor *pricing.Extractor,
	systemPrompt string,
	opts ...Option,
) *Agent {
	a := &Agent{
		index:        index,
		search:       search,
		completion:   completion,
		extractor:    extractor,
		systemPrompt: systemPrompt,
		minRelevance: DefaultMinRelevance,
		topK:         DefaultTopK,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Answer(ctx context.Context, msg contractx.Message) (string, []contractx.RetrievedFact, contractx.AgentStepTrace) {
	start := time.Now()
	text := msg.Trimmed()

	facts, fromIndex := a.retrieveFromIndex(ctx, text)
	if fromIndex {
		answer := a.compose(ctx, text, facts)
		return answer, facts, retrievalTrace("rag_retrieval", len(facts), start, nil)
	}

	facts, err := a.retrieveFromSearch(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("user_id", msg.UserID).Msg("knowledge retrieval failed on both paths")
		return fallbackAnswer, nil, retrievalTrace("web_search", 0, start, err)
	}

	answer := a.compose(ctx, text, facts)
	return answer, facts, retrievalTrace("web_search", len(facts), start, nil)
}

// retrieveFromIndex returns index facts above the relevance floor. The
// second result reports whether the index path is usable at all; false
// means the caller must fall back to web search.
func (a *Agent) retrieveFromIndex(ctx context.Context, text string) ([]contractx.RetrievedFact, bool) {
	if _, ok := vocab.MatchesProduct(text); !ok {
		if _, ok := vocab.MatchesPricing(text); !ok {
			return nil, false
		}
	}

	facts, err := a.index.Query(ctx, text, []contractx.Partition{
		contractx.PartitionText,
		contractx.PartitionPricing,
	}, a.topK)
	if err != nil {
		log.Debug().Err(err).Msg("index query failed, falling back to web search")
		return nil, false
	}

	relevant := facts[:0]
	for _, fact := range facts {
		if fact.Score >= a.minRelevance {
			relevant = append(relevant, fact)
		}
	}
	if len(relevant) == 0 {
		return nil, false
	}
	return relevant, true
}

func (a *Agent) retrieveFromSearch(ctx context.Context, text string) ([]contractx.RetrievedFact, error) {
	hits, err := a.search.Search(ctx, text, a.topK)
	if err != nil {
		return nil, err
	}

	facts := make([]contractx.RetrievedFact, 0, len(hits))
	for i, hit := range hits {
		factText := hit.Snippet
		if hit.Title != "" {
			factText = hit.Title + ": " + hit.Snippet
		}
		facts = append(facts, contractx.RetrievedFact{
			Text:      factText,
			Source:    contractx.SourceSearch,
			Score:     rankScore(i),
			Partition: contractx.PartitionText,
		})
	}
	return facts, nil
}

// compose turns retrieved facts into the technical answer. Pricing
// questions get a deterministic template so numbers survive verbatim;
// everything else goes through the completion client with the facts as
// grounding, degrading to the raw facts if the model is unavailable.
func (a *Agent) compose(ctx context.Context, text string, facts []contractx.RetrievedFact) string {
	if len(facts) == 0 {
		return fallbackAnswer
	}

	if pricingFacts, zeroCost := a.extractPricing(text, facts); len(pricingFacts) > 0 || zeroCost {
		return pricingAnswer(pricingFacts, zeroCost)
	}

	prompt := compositionPrompt(text, facts)
	answer, err := a.completion.Complete(ctx, a.systemPrompt, prompt, compositionTemperature)
	if err != nil || strings.TrimSpace(answer) == "" {
		log.Debug().Err(err).Msg("answer composition failed, returning raw facts")
		return factDigest(facts)
	}
	return answer
}

// extractPricing runs the extractor over every fact text when pricing
// applies, deduplicating by normalized value across facts.
func (a *Agent) extractPricing(text string, facts []contractx.RetrievedFact) ([]contractx.PricingFact, bool) {
	applies := false
	for _, fact := range facts {
		if fact.Partition == contractx.PartitionPricing {
			applies = true
			break
		}
	}
	if !applies {
		_, applies = vocab.MatchesPricing(text)
	}
	if !applies {
		return nil, false
	}

	var out []contractx.PricingFact
	seen := make(map[string]struct{})
	zeroCost := false
	for _, fact := range facts {
		for _, pf := range a.extractor.Extract(fact.Text) {
			if _, dup := seen[pf.NormalizedValue]; dup {
				continue
			}
			seen[pf.NormalizedValue] = struct{}{}
			out = append(out, pf)
		}
		if pricing.HasZeroCostKeyword(fact.Text) {
			zeroCost = true
		}
	}
	return out, zeroCost
}

func pricingAnswer(facts []contractx.PricingFact, zeroCost bool) string {
	if len(facts) == 0 {
		return "This option is free of charge."
	}

	parts := make([]string, 0, len(facts))
	for _, fact := range facts {
		if label := contextLabel(fact.ContextWindow, fact.RawMatch); label != "" {
			parts = append(parts, fmt.Sprintf("%s %s", label, fact.NormalizedValue))
		} else {
			parts = append(parts, fact.NormalizedValue)
		}
	}

	answer := "Here are the rates I found: " + strings.Join(parts, ", ") + "."
	if zeroCost {
		answer += " Some options are free of charge."
	}
	return answer
}

// contextLabel pulls the words immediately before the match out of the
// context window, e.g. "Credit cards" for "Credit cards 2.5%".
func contextLabel(window, rawMatch string) string {
	idx := strings.Index(window, rawMatch)
	if idx <= 0 {
		return ""
	}
	before := strings.TrimSpace(window[:idx])
	if before == "" {
		return ""
	}
	words := strings.Fields(before)
	if len(words) > 3 {
		words = words[len(words)-3:]
	}
	// Drop neighboring numbers so the label is only the descriptive words.
	labelWords := words[:0]
	for _, word := range words {
		if strings.ContainsAny(word, "0123456789%") {
			labelWords = labelWords[:0]
			continue
		}
		labelWords = append(labelWords, word)
	}
	return strings.Trim(strings.Join(labelWords, " "), ",.;:")
}

func compositionPrompt(question string, facts []contractx.RetrievedFact) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nFacts:\n")
	for _, fact := range facts {
		sb.WriteString("- ")
		sb.WriteString(fact.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nAnswer the question using only the facts above.")
	return sb.String()
}

func factDigest(facts []contractx.RetrievedFact) string {
	parts := make([]string, 0, len(facts))
	for _, fact := range facts {
		parts = append(parts, strings.TrimSpace(fact.Text))
	}
	return "Here is what I found: " + strings.Join(parts, " ")
}

func retrievalTrace(tool string, resultsCount int, start time.Time, retrievalErr error) contractx.AgentStepTrace {
	trace := contractx.NewStepTrace(agentName)
	result := contractx.ToolResult{
		"success":            retrievalErr == nil,
		"results_count":      resultsCount,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	if retrievalErr != nil {
		result["error"] = retrievalErr.Error()
	}
	trace.ToolCalls[tool] = result
	return trace
}

func rankScore(rank int) float64 {
	score := 1.0 - 0.1*float64(rank)
	if score < 0.1 {
		return 0.1
	}
	return score
}
