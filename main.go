package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agentswarm/agentswarm/agent/agents/knowledge"
	"github.com/agentswarm/agentswarm/agent/agents/orchestrator"
	"github.com/agentswarm/agentswarm/agent/agents/personality"
	routerx "github.com/agentswarm/agentswarm/agent/agents/router"
	"github.com/agentswarm/agentswarm/agent/agents/support"
	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/customer"
	indexx "github.com/agentswarm/agentswarm/agent/index"
	llmx "github.com/agentswarm/agentswarm/agent/llm"
	"github.com/agentswarm/agentswarm/agent/pricing"
	promptx "github.com/agentswarm/agentswarm/agent/prompt"
	configx "github.com/agentswarm/agentswarm/pkg/config"
	_ "github.com/agentswarm/agentswarm/pkg/logger/autoload"
	openrouterx "github.com/agentswarm/agentswarm/pkg/openrouter"
	scraperx "github.com/agentswarm/agentswarm/pkg/scraper"
	serverx "github.com/agentswarm/agentswarm/pkg/server"
	websearchx "github.com/agentswarm/agentswarm/pkg/websearch"
)

type AppConfig struct {
	// ContentURLs is a comma-separated list of pages to ingest into the
	// semantic index. Empty means the built-in seed corpus is used.
	ContentURLs string `envconfig:"CONTENT_URLS" split_words:"true"`

	// CustomerDSN switches the customer directory to Postgres. Empty
	// means the in-memory seeded directory.
	CustomerDSN string `envconfig:"CUSTOMER_DSN" split_words:"true"`

	BootstrapTimeout time.Duration `envconfig:"BOOTSTRAP_TIMEOUT" split_words:"true" default:"120s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm configuration")
	}

	sdk := openrouterx.MustNew(llmCfg.OpenRouter())
	prompts := promptx.LoadPromptSet()

	routerModel, err := llmCfg.ChatModelFor(ctx, llmx.AgentRouter)
	if err != nil {
		log.Fatal().Err(err).Msg("build router chat model")
	}
	routerAgent, err := routerx.New(ctx, routerModel, prompts.Router)
	if err != nil {
		log.Fatal().Err(err).Msg("build router agent")
	}

	knowledgeClient := llmx.NewClient(sdk, *llmCfg, llmx.AgentKnowledge)
	semanticIndex := indexx.New(knowledgeClient)

	searchCfg := configx.MustNew[websearchx.Config]("SEARCH")
	searchClient, err := websearchx.NewClient(*searchCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build web search client")
	}

	knowledgeAgent := knowledge.New(
		semanticIndex,
		searchClient,
		knowledgeClient,
		pricing.NewExtractor(),
		prompts.Knowledge,
	)

	directory, cleanup := buildCustomerDirectory(appCfg.CustomerDSN)
	defer cleanup()
	supportAgent := support.New(directory, llmx.NewClient(sdk, *llmCfg, llmx.AgentSupport), prompts.Support)

	personalityAgent := personality.New(llmx.NewClient(sdk, *llmCfg, llmx.AgentPersonality), prompts.Personality)

	scraperCfg := configx.MustNew[scraperx.Config]("SCRAPER")
	ingestor := orchestrator.NewIngestor(scraperx.New(*scraperCfg), splitURLs(appCfg.ContentURLs))

	service, err := orchestrator.New(
		routerAgent,
		knowledgeAgent,
		supportAgent,
		personalityAgent,
		semanticIndex,
		ingestor,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	bootstrapCtx, cancel := context.WithTimeout(ctx, appCfg.BootstrapTimeout)
	if err := service.Bootstrap(bootstrapCtx); err != nil {
		// A failed bootstrap leaves the knowledge agent on the web
		// search path until the next rebuild succeeds.
		log.Warn().Err(err).Msg("index bootstrap failed, starting with an empty index")
	}
	cancel()

	srvCfg := configx.MustNew[serverx.Config]("HTTP")
	srv := serverx.New(*srvCfg, service)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}
}

func buildCustomerDirectory(dsn string) (contractx.CustomerDirectory, func()) {
	if strings.TrimSpace(dsn) == "" {
		log.Info().Msg("no customer dsn configured, using seeded in-memory directory")
		return customer.NewSeededDirectory(), func() {}
	}

	dir, err := customer.NewPostgresDirectory(customer.PostgresConfig{DSN: dsn})
	if err != nil {
		log.Fatal().Err(err).Msg("connect customer database")
	}
	return dir, func() {
		if err := dir.Close(); err != nil {
			log.Error().Err(err).Msg("close customer database")
		}
	}
}

func splitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
