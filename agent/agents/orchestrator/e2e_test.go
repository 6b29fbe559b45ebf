package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agentswarm/agentswarm/agent/agents/knowledge"
	"github.com/agentswarm/agentswarm/agent/agents/personality"
	routerx "github.com/agentswarm/agentswarm/agent/agents/router"
	"github.com/agentswarm/agentswarm/agent/agents/support"
	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/customer"
	indexx "github.com/agentswarm/agentswarm/agent/index"
	"github.com/agentswarm/agentswarm/agent/pricing"
)

// markerEmbedder maps marker words to fixed axes so similarity is
// deterministic without a real embedding model.
type markerEmbedder struct{}

func (markerEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	markers := []string{"maquininha", "pix", "boleto", "conta"}
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, len(markers)+1)
		lower := strings.ToLower(text)
		hit := false
		for j, marker := range markers {
			if strings.Contains(lower, marker) {
				vec[j] = 1
				hit = true
			}
		}
		if !hit {
			vec[len(markers)] = 0.01
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type staticChatModel struct{}

func (staticChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	return &schema.Message{Content: `{"agent":"KNOWLEDGE","reasoning":"default","confidence":0.6,"priority":"medium"}`}, nil
}

func (staticChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (s staticChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return s, nil
}

// echoCompletion rewrites by prefixing, which keeps every numeric token
// from the technical answer intact.
type echoCompletion struct{}

func (echoCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	const marker = "Technical answer to rewrite:\n"
	if i := strings.Index(userPrompt, marker); i >= 0 {
		rest := userPrompt[i+len(marker):]
		if j := strings.Index(rest, "\n\n"); j >= 0 {
			rest = rest[:j]
		}
		return "Great question! " + strings.TrimSpace(rest), nil
	}
	return "Happy to help! " + userPrompt, nil
}

func newEndToEndService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	routerAgent, err := routerx.New(ctx, staticChatModel{}, "router prompt")
	if err != nil {
		t.Fatalf("router.New() error = %v", err)
	}

	semanticIndex := indexx.New(markerEmbedder{})
	ingestor := NewIngestor(nil, nil)

	knowledgeAgent := knowledge.New(
		semanticIndex,
		failingSearch{},
		echoCompletion{},
		pricing.NewExtractor(),
		"knowledge prompt",
	)
	supportAgent := support.New(customer.NewSeededDirectory(), echoCompletion{}, "support prompt")
	personalityAgent := personality.New(echoCompletion{}, "personality prompt")

	svc, err := New(routerAgent, knowledgeAgent, supportAgent, personalityAgent, semanticIndex, ingestor)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	return svc
}

type failingSearch struct{}

func (failingSearch) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchHit, error) {
	return nil, contractx.ErrSearchUnavailable
}

func TestEndToEndMaquininhaFees(t *testing.T) {
	t.Parallel()

	svc := newEndToEndService(t)

	result, err := svc.Process(context.Background(), contractx.Message{
		Text:   "What are the fees for Maquininha Smart?",
		UserID: "client789",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !strings.Contains(result.Response, "2.5%") {
		t.Fatalf("response missing credit rate: %q", result.Response)
	}
	if !strings.Contains(result.SourceAgentResponse, "1.9%") {
		t.Fatalf("technical answer missing debit rate: %q", result.SourceAgentResponse)
	}

	if len(result.AgentWorkflow) != 3 {
		t.Fatalf("workflow steps = %d, want 3", len(result.AgentWorkflow))
	}
	wantOrder := []string{"router", "knowledge", "personality"}
	for i, step := range result.AgentWorkflow {
		if step.AgentName != wantOrder[i] {
			t.Fatalf("workflow[%d] = %s, want %s", i, step.AgentName, wantOrder[i])
		}
	}

	routeCall := result.AgentWorkflow[0].ToolCalls["route_analysis"]
	if routeCall["target"] != "KNOWLEDGE" {
		t.Fatalf("route target = %v, want KNOWLEDGE", routeCall["target"])
	}
	ragCall, ok := result.AgentWorkflow[1].ToolCalls["rag_retrieval"]
	if !ok {
		t.Fatalf("knowledge step used %v, want rag_retrieval", result.AgentWorkflow[1].ToolCalls)
	}
	if ragCall["success"] != true {
		t.Fatalf("rag_retrieval success = %v", ragCall["success"])
	}
}

func TestEndToEndSupportTransferIssue(t *testing.T) {
	t.Parallel()

	svc := newEndToEndService(t)

	result, err := svc.Process(context.Background(), contractx.Message{
		Text:   "I can't make transfers from my account",
		UserID: "client789",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Response == "" {
		t.Fatal("response is empty")
	}

	routerStep := result.AgentWorkflow[0]
	if routerStep.Confidence == nil || *routerStep.Confidence != 1.0 {
		t.Fatalf("router confidence = %v, want 1.0 for keyword match", routerStep.Confidence)
	}
	routeCall := routerStep.ToolCalls["route_analysis"]
	if routeCall["target"] != "SUPPORT" {
		t.Fatalf("route target = %v, want SUPPORT", routeCall["target"])
	}

	supportStep := result.AgentWorkflow[1]
	if supportStep.AgentName != "support" {
		t.Fatalf("workflow[1] = %s, want support", supportStep.AgentName)
	}
	if supportStep.ToolCalls["get_customer_info"]["success"] != true {
		t.Fatalf("get_customer_info failed: %v", supportStep.ToolCalls)
	}
	if _, ok := supportStep.ToolCalls["get_recent_transactions"]; !ok {
		t.Fatalf("transfer question should pull recent transactions: %v", supportStep.ToolCalls)
	}
}

func TestEndToEndUnrelatedQueryFallsBackToSearchTrace(t *testing.T) {
	t.Parallel()

	svc := newEndToEndService(t)

	result, err := svc.Process(context.Background(), contractx.Message{
		Text:   "What will the weather be like tomorrow?",
		UserID: "client789",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	knowledgeStep := result.AgentWorkflow[1]
	if _, ok := knowledgeStep.ToolCalls["web_search"]; !ok {
		t.Fatalf("knowledge step used %v, want web_search", knowledgeStep.ToolCalls)
	}
	if _, ok := knowledgeStep.ToolCalls["rag_retrieval"]; ok {
		t.Fatal("rag_retrieval must not appear for a non-domain query")
	}
	if result.Response == "" {
		t.Fatal("response is empty even with search unavailable")
	}
}
