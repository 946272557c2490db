package demo

import (
	"context"

	"github.com/kolah/relay/httperr"
	"github.com/kolah/relay/internal/config"
	"github.com/kolah/relay/server"
)

const (
	TokenStrategy  = "token"
	APIKeyStrategy = "key"
	APIKeyHeader   = "X-API-Key"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindService Kind = "service"
)

// Identity is the credential the demo strategies attach to a request.
type Identity struct {
	Subject string `json:"subject"`
	Kind    Kind   `json:"kind"`
}

// IsService allows identities authenticated by API key.
func IsService(credentials any) bool {
	id, ok := credentials.(Identity)
	return ok && id.Kind == KindService
}

// SetupAuth registers the bearer token and API key strategies backed by cfg
// and applies cfg's default mode and strategies.
func SetupAuth(s *server.Server, cfg config.AuthConfig) error {
	tokens := server.BearerStrategy(func(_ context.Context, token string) (any, error) {
		subject, ok := cfg.Tokens[token]
		if !ok {
			return nil, httperr.Unauthorized("Invalid token")
		}
		return Identity{Subject: subject, Kind: KindUser}, nil
	})
	keys := server.APIKeyStrategy{
		Location: "header",
		Name:     APIKeyHeader,
		Validate: func(_ context.Context, key string) (any, error) {
			subject, ok := cfg.APIKeys[key]
			if !ok {
				return nil, httperr.Unauthorized("Invalid API key")
			}
			return Identity{Subject: subject, Kind: KindService}, nil
		},
	}

	if err := s.AuthStrategy(TokenStrategy, tokens); err != nil {
		return err
	}
	if err := s.AuthStrategy(APIKeyStrategy, keys); err != nil {
		return err
	}
	return s.AuthDefault(server.AuthConfig{
		Mode:       server.AuthMode(cfg.Mode),
		Strategies: cfg.Strategies,
	})
}
