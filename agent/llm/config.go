// Package llm carries the per-agent model configuration and the
// completion/embedding client handed to the agents.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	openrouterx "github.com/agentswarm/agentswarm/pkg/openrouter"
)

// AgentKind selects per-agent model and temperature overrides.
type AgentKind string

const (
	AgentRouter      AgentKind = "router"
	AgentKnowledge   AgentKind = "knowledge"
	AgentSupport     AgentKind = "support"
	AgentPersonality AgentKind = "personality"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	EmbeddingModel     string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"openai/text-embedding-3-small"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel      string `envconfig:"ROUTER_MODEL" split_words:"true"`
	KnowledgeModel   string `envconfig:"KNOWLEDGE_MODEL" split_words:"true"`
	SupportModel     string `envconfig:"SUPPORT_MODEL" split_words:"true"`
	PersonalityModel string `envconfig:"PERSONALITY_MODEL" split_words:"true"`

	RouterTemperature      float64 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	KnowledgeTemperature   float64 `envconfig:"KNOWLEDGE_TEMPERATURE" split_words:"true" default:"-1"`
	SupportTemperature     float64 `envconfig:"SUPPORT_TEMPERATURE" split_words:"true" default:"-1"`
	PersonalityTemperature float64 `envconfig:"PERSONALITY_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// ModelFor returns the model name for the given agent, falling back to
// the default.
func (c Config) ModelFor(kind AgentKind) string {
	override := ""
	switch kind {
	case AgentRouter:
		override = c.RouterModel
	case AgentKnowledge:
		override = c.KnowledgeModel
	case AgentSupport:
		override = c.SupportModel
	case AgentPersonality:
		override = c.PersonalityModel
	}
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}

// TemperatureFor returns the sampling temperature for the given agent;
// negative overrides mean "use the default".
func (c Config) TemperatureFor(kind AgentKind) float64 {
	temp := c.Temperature
	var override float64
	switch kind {
	case AgentRouter:
		override = c.RouterTemperature
	case AgentKnowledge:
		override = c.KnowledgeTemperature
	case AgentSupport:
		override = c.SupportTemperature
	case AgentPersonality:
		override = c.PersonalityTemperature
	}
	if override >= 0 {
		temp = override
	}
	return temp
}

// OpenRouter maps the shared fields onto the SDK client config.
func (c Config) OpenRouter() openrouterx.Config {
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		EmbeddingModel:     strings.TrimSpace(c.EmbeddingModel),
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

// ChatModelFor builds an eino chat model for the given agent. Used by
// the router's structured-classification graph.
func (c Config) ChatModelFor(ctx context.Context, kind AgentKind) (einomodel.ToolCallingChatModel, error) {
	temp := float32(c.TemperatureFor(kind))
	maxTokens := c.MaxCompletionToken

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       c.ModelFor(kind),
		MaxTokens:   &maxTokens,
		Temperature: &temp,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: create chat model for %s: %v", contractx.ErrUpstream, kind, err)
	}
	return m, nil
}
