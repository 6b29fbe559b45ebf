package llm

import (
	"context"
	"fmt"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	openrouterx "github.com/agentswarm/agentswarm/pkg/openrouter"
)

// Client binds one agent's model choice to the shared SDK client and
// classifies failures as ErrUpstream per the completion contract.
type Client struct {
	sdk   *openrouterx.Client
	model string
}

var (
	_ contractx.CompletionClient = (*Client)(nil)
	_ contractx.Embedder         = (*Client)(nil)
)

// NewClient returns a completion client pinned to the model configured
// for kind.
func NewClient(sdk *openrouterx.Client, cfg Config, kind AgentKind) *Client {
	return &Client{
		sdk:   sdk,
		model: cfg.ModelFor(kind),
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	out, err := c.sdk.Complete(ctx, c.model, systemPrompt, userPrompt, temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrUpstream, err)
	}
	return out, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors, err := c.sdk.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrUpstream, err)
	}
	return vectors, nil
}
