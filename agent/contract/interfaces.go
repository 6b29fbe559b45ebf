package contract

import "context"

// CompletionClient is the black-box text-completion service every agent
// depends on. Implementations fail with ErrUpstream on network, auth, or
// rate-limit errors.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Embedder turns texts into vectors for the semantic index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// SemanticIndex stores embedded text chunks in logical partitions and
// answers similarity queries. Rebuild atomically replaces the full
// contents; in-flight queries complete against the prior snapshot.
type SemanticIndex interface {
	Query(ctx context.Context, text string, partitions []Partition, k int) ([]RetrievedFact, error)
	Rebuild(ctx context.Context, docs []Document) error
	Stats() IndexStats
}

// SearchAdapter queries the external search provider. Fails with
// ErrSearchUnavailable.
type SearchAdapter interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error)
}

// CustomerDirectory is the customer-data collaborator consumed by the
// support agent. GetCustomerInfo returns ErrNotFound for unknown users;
// that is a normal branch, not a failure.
type CustomerDirectory interface {
	GetCustomerInfo(ctx context.Context, userID string) (*CustomerRecord, error)
	CheckAccountStatus(ctx context.Context, userID string) (*AccountStatus, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
}

// Router classifies an incoming message into a route decision and emits
// one trace step for the route_analysis tool call.
type Router interface {
	Route(ctx context.Context, msg Message) (RouteDecision, AgentStepTrace)
}

// KnowledgeAgent answers product and general questions from the index or
// external search.
type KnowledgeAgent interface {
	Answer(ctx context.Context, msg Message) (string, []RetrievedFact, AgentStepTrace)
}

// SupportAgent answers account-specific questions using the customer
// directory.
type SupportAgent interface {
	Answer(ctx context.Context, msg Message) (string, AgentStepTrace)
}

// PersonalityAgent rewrites a technical answer into a conversational one,
// preserving language and facts. On completion failure it returns the
// technical answer unchanged.
type PersonalityAgent interface {
	Enhance(ctx context.Context, technicalAnswer string, original Message) (string, AgentStepTrace)
}
