// Package api declares HTTP endpoints as plain route descriptors.
//
// A controller lists its routes in an explicit registration table; the
// adapter package turns every descriptor into a registration for the host
// server. Nothing here knows about the server.
package api

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

// Handler serves one route. It returns either a plain value, which is
// serialized as-is, or a *Response envelope.
type Handler func(ctx context.Context, req *Request) (any, error)

// Request is the server-independent view of an inbound request.
type Request struct {
	// Query holds a string per key, or []string when the key repeats.
	Query   map[string]any    `json:"query"`
	Params  map[string]string `json:"params"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
	// Auth holds the credentials established by the server, nil when the
	// request is unauthenticated.
	Auth any `json:"auth"`
}

// Metadata is optional per-route information.
type Metadata struct {
	Description    string   `json:"description,omitempty"`
	ContentType    string   `json:"contentType,omitempty"`
	AuthStrategies []string `json:"authStrategies,omitempty"`
}

// Route describes one HTTP endpoint.
type Route struct {
	Method   string
	Path     string
	Handler  Handler
	Auth     AuthPolicy
	Metadata *Metadata
}

// Invoke enforces the route's auth policy against req.Auth, then calls the
// handler.
func (r Route) Invoke(ctx context.Context, req *Request) (any, error) {
	if err := r.Auth.Authorize(req.Auth); err != nil {
		return nil, err
	}
	return r.Handler(ctx, req)
}

func (r Route) clone() Route {
	if r.Metadata != nil {
		md := *r.Metadata
		md.AuthStrategies = slices.Clone(md.AuthStrategies)
		r.Metadata = &md
	}
	return r
}

// Controller exposes a set of routes.
type Controller interface {
	Routes() []Route
}

// RouteOption sets route metadata.
type RouteOption func(*Metadata)

func Description(text string) RouteOption {
	return func(m *Metadata) { m.Description = text }
}

func ContentType(contentType string) RouteOption {
	return func(m *Metadata) { m.ContentType = contentType }
}

// AuthStrategies names the server strategies tried for the route.
func AuthStrategies(names ...string) RouteOption {
	return func(m *Metadata) { m.AuthStrategies = slices.Clone(names) }
}

// Table is an explicit registration table. Embed it in a controller and fill
// it from the controller's constructor.
type Table struct {
	routes []Route
}

// Handle appends a route. Metadata is attached only when options are given.
func (t *Table) Handle(method, path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	route := Route{
		Method:  strings.ToUpper(method),
		Path:    path,
		Handler: handler,
		Auth:    auth,
	}
	if len(opts) > 0 {
		md := &Metadata{}
		for _, opt := range opts {
			opt(md)
		}
		route.Metadata = md
	}
	t.routes = append(t.routes, route)
}

func (t *Table) Get(path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	t.Handle(http.MethodGet, path, auth, handler, opts...)
}

func (t *Table) Post(path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	t.Handle(http.MethodPost, path, auth, handler, opts...)
}

func (t *Table) Put(path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	t.Handle(http.MethodPut, path, auth, handler, opts...)
}

func (t *Table) Patch(path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	t.Handle(http.MethodPatch, path, auth, handler, opts...)
}

func (t *Table) Delete(path string, auth AuthPolicy, handler Handler, opts ...RouteOption) {
	t.Handle(http.MethodDelete, path, auth, handler, opts...)
}

// Routes returns copies of the declared routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.clone()
	}
	return out
}

// Find returns the first route declared for method and path.
func (t *Table) Find(method, path string) (Route, bool) {
	method = strings.ToUpper(method)
	for _, r := range t.routes {
		if r.Method == method && r.Path == path {
			return r.clone(), true
		}
	}
	return Route{}, false
}
