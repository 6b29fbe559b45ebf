package router

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
	calls     int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func newTestRouter(t *testing.T, fake *fakeChatModel) *Agent {
	t.Helper()
	agent, err := New(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return agent
}

func TestRouteSupportPhraseSkipsModel(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{}
	agent := newTestRouter(t, fake)

	decision, trace := agent.Route(context.Background(), contractx.Message{
		Text:   "I can't access my account since yesterday",
		UserID: "client789",
	})

	if decision.Target != contractx.TargetSupport {
		t.Fatalf("Target = %s, want SUPPORT", decision.Target)
	}
	if decision.Confidence != 1.0 {
		t.Fatalf("Confidence = %v, want 1.0", decision.Confidence)
	}
	if decision.Priority != contractx.PriorityHigh {
		t.Fatalf("Priority = %s, want high", decision.Priority)
	}
	if fake.calls != 0 {
		t.Fatalf("model called %d times for keyword route, want 0", fake.calls)
	}
	if trace.AgentName != "router" {
		t.Fatalf("trace agent = %s, want router", trace.AgentName)
	}
	call, ok := trace.ToolCalls["route_analysis"]
	if !ok {
		t.Fatalf("trace missing route_analysis tool call: %v", trace.ToolCalls)
	}
	if call["classifier"] != "keyword" {
		t.Fatalf("classifier = %v, want keyword", call["classifier"])
	}
}

func TestRouteProductTermGoesToKnowledge(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{}
	agent := newTestRouter(t, fake)

	decision, _ := agent.Route(context.Background(), contractx.Message{
		Text:   "What are the fees for the Maquininha Smart?",
		UserID: "client789",
	})

	if decision.Target != contractx.TargetKnowledge {
		t.Fatalf("Target = %s, want KNOWLEDGE", decision.Target)
	}
	if decision.Confidence != 1.0 {
		t.Fatalf("Confidence = %v, want 1.0", decision.Confidence)
	}
	if fake.calls != 0 {
		t.Fatalf("model called %d times for keyword route, want 0", fake.calls)
	}
}

func TestRouteModelClassification(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{
				Content: `{"agent":"SUPPORT","reasoning":"user reports an account problem","confidence":0.87,"priority":"high","context":{"user_intent":"account_support","query_type":"support"}}`,
			},
		},
	}
	agent := newTestRouter(t, fake)

	decision, trace := agent.Route(context.Background(), contractx.Message{
		Text:   "Something is wrong with my account today",
		UserID: "client789",
	})

	if decision.Target != contractx.TargetSupport {
		t.Fatalf("Target = %s, want SUPPORT", decision.Target)
	}
	if decision.Confidence != 0.87 {
		t.Fatalf("Confidence = %v, want 0.87", decision.Confidence)
	}
	if decision.Priority != contractx.PriorityHigh {
		t.Fatalf("Priority = %s, want high", decision.Priority)
	}
	if fake.calls != 1 {
		t.Fatalf("model calls = %d, want 1", fake.calls)
	}
	if trace.Confidence == nil || *trace.Confidence != 0.87 {
		t.Fatalf("trace confidence = %v, want 0.87", trace.Confidence)
	}
}

func TestRouteModelConfidenceClamping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		want     float64
	}{
		{
			name:     "above one is clamped",
			response: `{"agent":"KNOWLEDGE","reasoning":"r","confidence":3.0,"priority":"medium"}`,
			want:     1.0,
		},
		{
			name:     "missing confidence gets floor",
			response: `{"agent":"KNOWLEDGE","reasoning":"r","priority":"medium"}`,
			want:     0.5,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeChatModel{responses: []*schema.Message{{Content: tc.response}}}
			agent := newTestRouter(t, fake)

			decision, _ := agent.Route(context.Background(), contractx.Message{
				Text:   "hello there, quick question about nothing in particular",
				UserID: "client789",
			})
			if decision.Confidence != tc.want {
				t.Fatalf("Confidence = %v, want %v", decision.Confidence, tc.want)
			}
		})
	}
}

func TestRouteModelFailureFallsBackToKnowledge(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("upstream boom")}
	agent := newTestRouter(t, fake)

	decision, trace := agent.Route(context.Background(), contractx.Message{
		Text:   "hmm, not sure what I need",
		UserID: "client789",
	})

	if decision.Target != contractx.TargetKnowledge {
		t.Fatalf("Target = %s, want KNOWLEDGE fallback", decision.Target)
	}
	if decision.Confidence != 0.5 {
		t.Fatalf("Confidence = %v, want 0.5 fallback", decision.Confidence)
	}
	if decision.Priority != contractx.PriorityMedium {
		t.Fatalf("Priority = %s, want medium", decision.Priority)
	}
	call := trace.ToolCalls["route_analysis"]
	if call["classifier"] != "model" {
		t.Fatalf("classifier = %v, want model", call["classifier"])
	}
}

func TestRouteModelUnknownAgentFallsBack(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"agent":"BILLING","reasoning":"?","confidence":0.9,"priority":"low"}`},
		},
	}
	agent := newTestRouter(t, fake)

	decision, _ := agent.Route(context.Background(), contractx.Message{
		Text:   "random chatter with no obvious topic",
		UserID: "client789",
	})

	if decision.Target != contractx.TargetKnowledge {
		t.Fatalf("Target = %s, want KNOWLEDGE fallback", decision.Target)
	}
	if decision.Confidence != 0.5 {
		t.Fatalf("Confidence = %v, want 0.5 fallback", decision.Confidence)
	}
}
