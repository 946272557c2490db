package cli

import (
	"fmt"

	"github.com/kolah/relay/adapter"
	"github.com/kolah/relay/internal/config"
	"github.com/kolah/relay/internal/demo"
	"github.com/kolah/relay/internal/openapi"
	"github.com/kolah/relay/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// newServer builds the server described by cfg with the demo controllers
// registered. reg may be nil.
func newServer(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*server.Server, error) {
	engine, err := server.NewEngine(cfg.Server.Engine)
	if err != nil {
		return nil, err
	}

	s, err := server.New(&server.Options{
		Engine:       engine,
		Logger:       logger,
		Registerer:   reg,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	if err := demo.SetupAuth(s, cfg.Auth); err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}
	if err := s.Register(adapter.Plugin, adapter.PluginOptions{Controllers: demo.Controllers()}); err != nil {
		return nil, err
	}
	return s, nil
}

func buildDocument(cfg *config.Config, s *server.Server) ([]byte, error) {
	doc, err := openapi.Build(openapi.Info{
		Title:   cfg.OpenAPI.Title,
		Version: cfg.OpenAPI.Version,
	}, s.Table(), s.Schemes())
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI document: %w", err)
	}
	return doc, nil
}
