// Package orchestrator sequences the chat pipeline and owns the
// process-wide semantic index lifecycle.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	nodex "github.com/agentswarm/agentswarm/agent/nodes"
)

const errorHandlerName = "error_handler"

const apologyResponse = "I'm sorry, something went wrong while handling your message. " +
	"Please try again in a moment."

// Service is the public pipeline contract consumed by the transport
// layer. Process never propagates pipeline failures; only invalid input
// is returned as an error.
type Service struct {
	index       contractx.SemanticIndex
	ingestor    *Ingestor
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(
	router contractx.Router,
	knowledge contractx.KnowledgeAgent,
	support contractx.SupportAgent,
	personality contractx.PersonalityAgent,
	index contractx.SemanticIndex,
	ingestor *Ingestor,
) (*Service, error) {
	if router == nil {
		return nil, errors.New("router is required")
	}
	if knowledge == nil {
		return nil, errors.New("knowledge agent is required")
	}
	if support == nil {
		return nil, errors.New("support agent is required")
	}
	if personality == nil {
		return nil, errors.New("personality agent is required")
	}
	if index == nil {
		return nil, errors.New("semantic index is required")
	}
	if ingestor == nil {
		return nil, errors.New("ingestor is required")
	}

	s := &Service{index: index, ingestor: ingestor}

	graphRunner, err := compileProcessGraph(context.Background(), router, knowledge, support, personality)
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// Process runs one message through the pipeline. A validation failure
// is returned to the caller; any other failure is converted into a
// well-formed ChatResult carrying a single error_handler trace step.
func (s *Service) Process(ctx context.Context, msg contractx.Message) (contractx.ChatResult, error) {
	if err := msg.Validate(); err != nil {
		return contractx.ChatResult{}, err
	}

	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Message: msg})
	if err != nil {
		log.Error().Err(err).Str("user_id", msg.UserID).Msg("pipeline failed, returning error handler result")
		return errorResult(err), nil
	}
	return out.Result, nil
}

// RebuildIndex triggers an asynchronous full re-ingestion. Callers get
// an immediate acknowledgment; progress is only observable through
// Health reflecting updated document counts.
func (s *Service) RebuildIndex(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.rebuild(bg); err != nil {
			log.Error().Err(err).Msg("asynchronous index rebuild failed")
		}
	}()
}

// Bootstrap populates an empty index synchronously. Called once at
// startup; a non-empty index is left untouched.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.index.Stats().Total > 0 {
		return nil
	}
	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("bootstrap index: %w", err)
	}
	return nil
}

func (s *Service) Health() contractx.Health {
	stats := s.index.Stats()
	return contractx.Health{
		Initialized:     stats.Total > 0,
		VectorStoreInfo: stats,
	}
}

func (s *Service) rebuild(ctx context.Context) error {
	docs := s.ingestor.Load(ctx)
	if len(docs) == 0 {
		return errors.New("ingestion produced no documents")
	}
	return s.index.Rebuild(ctx, docs)
}

func errorResult(err error) contractx.ChatResult {
	trace := contractx.NewStepTrace(errorHandlerName)
	trace.ToolCalls["error"] = contractx.ToolResult{
		"success": false,
		"error":   err.Error(),
	}
	return contractx.ChatResult{
		Response:            apologyResponse,
		SourceAgentResponse: fmt.Sprintf("pipeline failure: %v", err),
		AgentWorkflow:       []contractx.AgentStepTrace{trace},
	}
}
