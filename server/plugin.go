package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrPluginRegistered = errors.New("plugin already registered")

// Plugin bundles a registration function under a name. Unless Multiple is
// set, a plugin registers at most once per server.
type Plugin struct {
	Name     string
	Version  string
	Multiple bool
	Register func(s *Server, options any) error
}

// Register runs p's registration with options.
func (s *Server) Register(p Plugin, options any) error {
	if p.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if p.Register == nil {
		return fmt.Errorf("plugin %s: missing register function", p.Name)
	}
	if s.plugins[p.Name] && !p.Multiple {
		return fmt.Errorf("%w: %s", ErrPluginRegistered, p.Name)
	}

	if err := p.Register(s, options); err != nil {
		return fmt.Errorf("plugin %s: %w", p.Name, err)
	}
	s.plugins[p.Name] = true

	s.logger.Info("plugin registered",
		zap.String("plugin", p.Name),
		zap.String("version", p.Version))
	return nil
}
