// Package server is the host HTTP server routes are registered with.
//
// It owns routing (delegated to an Engine), authentication strategy
// execution, payload parsing, response serialization and error rendering.
// Route handlers only see a parsed Request and return a Response or an
// error.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kolah/relay/httperr"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds request payloads when Options leave it unset.
const DefaultMaxBodyBytes = 1 << 20

var ErrDuplicateRoute = errors.New("duplicate route")

// Options configures a Server.
type Options struct {
	Engine       Engine
	Logger       *zap.Logger
	Registerer   prometheus.Registerer
	MaxBodyBytes int64
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Engine:       NewChiEngine(),
		Logger:       zap.NewNop(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

type Server struct {
	engine        Engine
	logger        *zap.Logger
	metrics       *metrics
	maxBodyBytes  int64
	strategies    map[string]Strategy
	strategyOrder []string
	defaultAuth   AuthConfig
	routes        []*routeEntry
	shapes        map[string]string
	plugins       map[string]bool
}

type routeEntry struct {
	route   Route
	pattern Pattern
}

// New creates a server. A nil opts uses DefaultOptions; zero fields fall
// back to their defaults.
func New(opts *Options) (*Server, error) {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}

	s := &Server{
		engine:       opts.Engine,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
		strategies:   make(map[string]Strategy),
		defaultAuth:  AuthConfig{Mode: AuthModeRequired},
		shapes:       make(map[string]string),
		plugins:      make(map[string]bool),
	}
	if s.engine == nil {
		s.engine = defaults.Engine
	}
	if s.logger == nil {
		s.logger = defaults.Logger
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaults.MaxBodyBytes
	}

	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	s.metrics = m

	s.engine.NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, httperr.NotFound(""))
	}))
	return s, nil
}

// Engine returns the name of the routing engine.
func (s *Server) Engine() string {
	return s.engine.Name()
}

// Route registers a route. It fails on an invalid method or path, an
// unknown auth strategy, or a method and path shape that is already taken.
func (s *Server) Route(r Route) error {
	method := strings.ToUpper(r.Method)
	if !validMethod(method) {
		return fmt.Errorf("invalid method %q for %s", r.Method, r.Path)
	}
	if r.Handler == nil {
		return fmt.Errorf("route %s %s: missing handler", method, r.Path)
	}

	pattern, err := ParsePattern(r.Path)
	if err != nil {
		return fmt.Errorf("route %s: %w", method, err)
	}

	if a := r.Options.Auth; a != nil && !a.Disabled {
		if a.Mode != "" {
			if err := a.Mode.Validate(); err != nil {
				return fmt.Errorf("route %s %s: %w", method, r.Path, err)
			}
		}
		if err := s.checkStrategies(a.Strategies); err != nil {
			return fmt.Errorf("route %s %s: %w", method, r.Path, err)
		}
	}

	variants := pattern.Variants()
	for _, v := range variants {
		if existing, ok := s.shapes[method+" "+v.Key()]; ok {
			return fmt.Errorf("%w: %s %s conflicts with %s", ErrDuplicateRoute, method, r.Path, existing)
		}
	}

	r.Method = method
	entry := &routeEntry{route: r, pattern: pattern}
	h := s.serve(entry)
	for _, v := range variants {
		if err := s.engine.Handle(method, v, h); err != nil {
			return err
		}
		s.shapes[method+" "+v.Key()] = r.Path
	}
	s.routes = append(s.routes, entry)

	s.logger.Debug("route registered",
		zap.String("method", method),
		zap.String("path", r.Path),
		zap.String("engine", s.engine.Name()))
	return nil
}

func validMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, c := range method {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Table returns the registered routes in registration order with their
// effective auth configuration.
func (s *Server) Table() []RouteInfo {
	out := make([]RouteInfo, 0, len(s.routes))
	for _, e := range s.routes {
		out = append(out, RouteInfo{
			Method:      e.route.Method,
			Path:        e.route.Path,
			Pattern:     e.pattern,
			Auth:        s.effectiveAuth(e.route.Options.Auth),
			Description: e.route.Options.Description,
		})
	}
	return out
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) serve(entry *routeEntry) ParamHandler {
	return func(w http.ResponseWriter, r *http.Request, fields map[string]string, escaped bool) {
		start := time.Now()
		status := s.handle(w, r, entry, fields, escaped)
		s.metrics.observe(entry.route.Method, entry.route.Path, status, time.Since(start))
	}
}

// handle authenticates before reading the payload, so a rejected request
// never has its body parsed.
func (s *Server) handle(w http.ResponseWriter, r *http.Request, entry *routeEntry, fields map[string]string, escaped bool) (status int) {
	defer func() {
		if rec := recover(); rec != nil {
			status = s.writeError(w, r, httperr.Internal(fmt.Errorf("panic: %v", rec)))
		}
	}()

	params, err := entry.pattern.Collect(fields, escaped)
	if err != nil {
		return s.writeError(w, r, httperr.BadRequest("Invalid path parameter encoding"))
	}

	req := s.newRequest(r, entry.route.Path, params)
	if err := s.authenticate(req, entry.route.Options.Auth); err != nil {
		return s.writeError(w, r, err)
	}
	if req.Payload, err = s.parsePayload(r); err != nil {
		return s.writeError(w, r, err)
	}

	res, err := entry.route.Handler(req)
	if err != nil {
		return s.writeError(w, r, err)
	}
	if res == nil {
		res = NewResponse(nil)
	}
	return s.write(w, r, res)
}
