package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Scheme describes a strategy the way an OpenAPI security scheme does.
type Scheme struct {
	Type   string // http, apiKey
	Scheme string // bearer, basic (type http)
	In     string // header, query, cookie (type apiKey)
	Name   string // parameter name (type apiKey)
}

// SchemeDescriber is implemented by strategies that can describe themselves.
type SchemeDescriber interface {
	Scheme() Scheme
}

// BearerStrategy validates a bearer token from the Authorization header.
type BearerStrategy func(ctx context.Context, token string) (any, error)

// Authenticate implements Strategy.
func (f BearerStrategy) Authenticate(r *http.Request) (any, error) {
	token := ExtractBearerToken(r)
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrNoCredentials)
	}
	return f(r.Context(), token)
}

func (f BearerStrategy) Scheme() Scheme {
	return Scheme{Type: "http", Scheme: "bearer"}
}

// BasicStrategy validates HTTP Basic credentials.
type BasicStrategy func(ctx context.Context, username, password string) (any, error)

// Authenticate implements Strategy.
func (f BasicStrategy) Authenticate(r *http.Request) (any, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, fmt.Errorf("%w: missing basic auth credentials", ErrNoCredentials)
	}
	return f(r.Context(), username, password)
}

func (f BasicStrategy) Scheme() Scheme {
	return Scheme{Type: "http", Scheme: "basic"}
}

// APIKeyStrategy validates an API key read from a header, query parameter
// or cookie.
type APIKeyStrategy struct {
	Location string
	Name     string
	Validate func(ctx context.Context, key string) (any, error)
}

// Authenticate implements Strategy.
func (s APIKeyStrategy) Authenticate(r *http.Request) (any, error) {
	key := ExtractAPIKey(r, s.Location, s.Name)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrNoCredentials)
	}
	return s.Validate(r.Context(), key)
}

func (s APIKeyStrategy) Scheme() Scheme {
	return Scheme{Type: "apiKey", In: s.Location, Name: s.Name}
}

// ExtractBearerToken extracts the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}

// ExtractAPIKey extracts an API key from the specified location.
func ExtractAPIKey(r *http.Request, location, name string) string {
	switch location {
	case "header":
		return r.Header.Get(name)
	case "query":
		return r.URL.Query().Get(name)
	case "cookie":
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
	}
	return ""
}
