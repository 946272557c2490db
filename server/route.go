package server

import (
	"fmt"
	"slices"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeOptional AuthMode = "optional"
	// AuthModeTry attempts authentication but never rejects the request.
	AuthModeTry AuthMode = "try"
)

func (m AuthMode) Validate() error {
	switch m {
	case AuthModeRequired, AuthModeOptional, AuthModeTry:
		return nil
	default:
		return fmt.Errorf("invalid auth mode: %s (valid: required, optional, try)", m)
	}
}

// AuthConfig is the server-wide default applied to routes that do not
// disable authentication.
type AuthConfig struct {
	Mode       AuthMode
	Strategies []string
}

// RouteAuth overrides the default for one route. Empty fields inherit the
// default.
type RouteAuth struct {
	Disabled   bool
	Mode       AuthMode
	Strategies []string
}

type RouteOptions struct {
	// Auth nil applies the server default.
	Auth        *RouteAuth
	Description string
}

// Handler serves a matched request. A nil response renders as 204.
type Handler func(req *Request) (*Response, error)

// Route is a server-native route registration.
type Route struct {
	Method  string
	Path    string
	Handler Handler
	Options RouteOptions
}

// EffectiveAuth is the auth configuration a route runs with once defaults
// are applied.
type EffectiveAuth struct {
	Disabled   bool
	Mode       AuthMode
	Strategies []string
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method      string
	Path        string
	Pattern     Pattern
	Auth        EffectiveAuth
	Description string
}

func (s *Server) effectiveAuth(a *RouteAuth) EffectiveAuth {
	if a != nil && a.Disabled {
		return EffectiveAuth{Disabled: true}
	}

	mode := s.defaultAuth.Mode
	strategies := s.defaultAuth.Strategies
	if a != nil {
		if a.Mode != "" {
			mode = a.Mode
		}
		if len(a.Strategies) > 0 {
			strategies = a.Strategies
		}
	}
	if mode == "" {
		mode = AuthModeRequired
	}
	if len(strategies) == 0 {
		return EffectiveAuth{Disabled: true}
	}
	return EffectiveAuth{Mode: mode, Strategies: slices.Clone(strategies)}
}
