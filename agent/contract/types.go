package contract

import (
	"fmt"
	"strings"
)

const (
	// MaxMessageLen caps Message.Text after trimming.
	MaxMessageLen = 10_000
	// MaxUserIDLen caps Message.UserID after trimming.
	MaxUserIDLen = 255
)

// Message is the immutable chat input. Validate must pass before the
// message enters the pipeline.
type Message struct {
	Text   string `json:"message"`
	UserID string `json:"user_id"`
}

func (m Message) Validate() error {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return fmt.Errorf("%w: message is empty", ErrValidation)
	}
	if len(text) > MaxMessageLen {
		return fmt.Errorf("%w: message exceeds %d characters", ErrValidation, MaxMessageLen)
	}
	userID := strings.TrimSpace(m.UserID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is empty", ErrValidation)
	}
	if len(userID) > MaxUserIDLen {
		return fmt.Errorf("%w: user_id exceeds %d characters", ErrValidation, MaxUserIDLen)
	}
	return nil
}

// Trimmed returns the message text with surrounding whitespace removed.
func (m Message) Trimmed() string {
	return strings.TrimSpace(m.Text)
}

type RouteTarget string

const (
	TargetKnowledge RouteTarget = "KNOWLEDGE"
	TargetSupport   RouteTarget = "SUPPORT"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RouteDecision is produced once per request by the router and is
// immutable thereafter.
type RouteDecision struct {
	Target     RouteTarget    `json:"target"`
	Reasoning  string         `json:"reasoning"`
	Confidence float64        `json:"confidence"`
	Priority   Priority       `json:"priority"`
	Context    map[string]any `json:"context,omitempty"`
}

type FactSource string

const (
	SourceIndex  FactSource = "INDEX"
	SourceSearch FactSource = "SEARCH"
)

type Partition string

const (
	PartitionText       Partition = "TEXT"
	PartitionPricing    Partition = "PRICING"
	PartitionStructured Partition = "STRUCTURED"
)

// RetrievedFact is one retrieval hit. Result sets are ordered by
// descending Score.
type RetrievedFact struct {
	Text      string     `json:"text"`
	Source    FactSource `json:"source"`
	Score     float64    `json:"score"`
	Partition Partition  `json:"partition"`
}

type PricingKind string

const (
	KindPercentage PricingKind = "PERCENTAGE"
	KindCurrency   PricingKind = "CURRENCY"
	KindRange      PricingKind = "RANGE"
)

// PricingFact is one monetary or percentage fact extracted from retrieved
// text. ContextWindow keeps the surrounding characters so the number can
// be attributed to a product or condition.
type PricingFact struct {
	RawMatch        string      `json:"raw_match"`
	Kind            PricingKind `json:"kind"`
	NormalizedValue string      `json:"normalized_value"`
	ContextWindow   string      `json:"context_window"`
}

// ToolResult captures one tool invocation outcome. The shape varies per
// tool but always answers "did this succeed and with how much data".
type ToolResult map[string]any

// AgentStepTrace is one agent's record in the per-request workflow.
// Appended in invocation order and never mutated afterwards.
type AgentStepTrace struct {
	AgentName  string                `json:"agent_name"`
	ToolCalls  map[string]ToolResult `json:"tool_calls"`
	Confidence *float64              `json:"confidence,omitempty"`
	Metadata   map[string]any        `json:"metadata,omitempty"`
}

// NewStepTrace builds a trace step with an allocated tool call map so
// callers can record results without nil checks.
func NewStepTrace(agentName string) AgentStepTrace {
	return AgentStepTrace{
		AgentName: agentName,
		ToolCalls: map[string]ToolResult{},
	}
}

// WithConfidence attaches a confidence value to the step.
func (t AgentStepTrace) WithConfidence(c float64) AgentStepTrace {
	t.Confidence = &c
	return t
}

// ChatResult is the final pipeline output. SourceAgentResponse is the
// pre-personality technical answer, Response the enhanced version.
type ChatResult struct {
	Response            string           `json:"response"`
	SourceAgentResponse string           `json:"source_agent_response"`
	AgentWorkflow       []AgentStepTrace `json:"agent_workflow"`
}

// SearchHit is one ranked snippet from the external search provider.
type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Document is one ingestible index entry.
type Document struct {
	Text      string
	Partition Partition
}

// IndexStats reports per-partition document counts.
type IndexStats struct {
	Counts map[Partition]int `json:"counts"`
	Total  int               `json:"total"`
}

// CustomerRecord is the profile returned by the customer directory.
type CustomerRecord struct {
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	AccountStatus string   `json:"account_status"`
	Products      []string `json:"products"`
	Balance       float64  `json:"balance"`
	DailyLimit    float64  `json:"daily_limit"`
	MonthlyLimit  float64  `json:"monthly_limit"`
}

// AccountStatus is the result of a status check, including any issues
// detected on the account.
type AccountStatus struct {
	Status          string   `json:"account_status"`
	Issues          []string `json:"issues,omitempty"`
	LastTransaction string   `json:"last_transaction,omitempty"`
}

// Transaction is one entry of the recent-transaction history.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Health is the orchestrator health snapshot consumed by the transport.
type Health struct {
	Initialized     bool       `json:"initialized"`
	VectorStoreInfo IndexStats `json:"vector_store_info"`
}
