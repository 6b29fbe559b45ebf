// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

// Pipeline is the orchestrator surface the transport consumes.
type Pipeline interface {
	Process(ctx context.Context, msg contractx.Message) (contractx.ChatResult, error)
	RebuildIndex(ctx context.Context)
	Health() contractx.Health
}

type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
}

func New(cfg Config, pipeline Pipeline) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      newRouter(pipeline),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
