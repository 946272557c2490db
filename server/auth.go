package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kolah/relay/httperr"
	"go.uber.org/zap"
)

var (
	// ErrNoCredentials is returned (possibly wrapped) by strategies when the
	// request carries no credentials for them at all.
	ErrNoCredentials = errors.New("no credentials")

	ErrUnknownStrategy = errors.New("unknown auth strategy")
)

// Strategy authenticates a request and returns its credentials.
type Strategy interface {
	Authenticate(r *http.Request) (any, error)
}

type StrategyFunc func(r *http.Request) (any, error)

// Authenticate implements Strategy.
func (f StrategyFunc) Authenticate(r *http.Request) (any, error) {
	return f(r)
}

// AuthState is the outcome of authentication for one request.
type AuthState struct {
	IsAuthenticated bool
	Credentials     any
	Strategy        string
	Mode            AuthMode
	// Error is the last strategy failure when no strategy succeeded.
	Error error
}

// AuthStrategy registers a named strategy.
func (s *Server) AuthStrategy(name string, strategy Strategy) error {
	if name == "" {
		return fmt.Errorf("auth strategy name is required")
	}
	if strategy == nil {
		return fmt.Errorf("auth strategy %s: nil strategy", name)
	}
	if _, ok := s.strategies[name]; ok {
		return fmt.Errorf("auth strategy %s already registered", name)
	}
	s.strategies[name] = strategy
	s.strategyOrder = append(s.strategyOrder, name)
	return nil
}

// AuthDefault sets the auth configuration for routes that do not override
// it. An empty mode means required.
func (s *Server) AuthDefault(cfg AuthConfig) error {
	if cfg.Mode == "" {
		cfg.Mode = AuthModeRequired
	}
	if err := cfg.Mode.Validate(); err != nil {
		return err
	}
	if err := s.checkStrategies(cfg.Strategies); err != nil {
		return err
	}
	s.defaultAuth = cfg
	return nil
}

// Strategies returns the registered strategy names in registration order.
func (s *Server) Strategies() []string {
	return append([]string(nil), s.strategyOrder...)
}

// Schemes describes the registered strategies that implement
// SchemeDescriber.
func (s *Server) Schemes() map[string]Scheme {
	schemes := make(map[string]Scheme)
	for name, strategy := range s.strategies {
		if d, ok := strategy.(SchemeDescriber); ok {
			schemes[name] = d.Scheme()
		}
	}
	return schemes
}

func (s *Server) checkStrategies(names []string) error {
	for _, name := range names {
		if _, ok := s.strategies[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
		}
	}
	return nil
}

// authenticate runs the route's strategies in order; the first success
// wins. Whether a failure rejects the request depends on the mode.
func (s *Server) authenticate(req *Request, routeAuth *RouteAuth) error {
	cfg := s.effectiveAuth(routeAuth)
	req.Auth.Mode = cfg.Mode
	if cfg.Disabled {
		return nil
	}

	var lastErr error
	missing := true
	for _, name := range cfg.Strategies {
		creds, err := s.strategies[name].Authenticate(req.raw)
		if err == nil && creds == nil {
			err = ErrNoCredentials
		}
		if err == nil {
			req.Auth = AuthState{
				IsAuthenticated: true,
				Credentials:     creds,
				Strategy:        name,
				Mode:            cfg.Mode,
			}
			return nil
		}
		s.logger.Debug("authentication failed",
			zap.String("strategy", name),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		// A rejected credential outranks a strategy that found nothing.
		if !errors.Is(err, ErrNoCredentials) {
			missing = false
			lastErr = err
		} else if lastErr == nil {
			lastErr = err
		}
	}
	req.Auth.Error = lastErr

	switch cfg.Mode {
	case AuthModeTry:
		return nil
	case AuthModeOptional:
		if missing {
			return nil
		}
	}
	return authError(lastErr, missing)
}

func authError(err error, missing bool) error {
	if httpErr, ok := httperr.As(err); ok {
		return httpErr
	}
	if missing {
		return httperr.Unauthorized("Missing authentication")
	}
	return httperr.Unauthorized("Invalid credentials")
}
