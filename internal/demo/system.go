// Package demo holds the controllers and credential strategies served by
// `relay serve`.
package demo

import (
	"context"

	"github.com/kolah/relay/api"
)

// System exposes health, identity and echo routes.
type System struct {
	api.Table
}

func NewSystem() *System {
	c := &System{}
	c.Get("/health", api.AuthNone, health, api.Description("Liveness check"))
	c.Get("/whoami", api.AuthRequired, whoami, api.Description("Current identity"))
	c.Get("/echo/{path*}", api.AuthOptional, echo, api.Description("Echo the request"))
	c.Post("/echo/{path*}", api.AuthOptional, echo, api.Description("Echo the request"))
	return c
}

func health(context.Context, *api.Request) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

func whoami(_ context.Context, req *api.Request) (any, error) {
	return req.Auth, nil
}

func echo(_ context.Context, req *api.Request) (any, error) {
	return req, nil
}

// Controllers returns every demo controller.
func Controllers() []api.Controller {
	return []api.Controller{NewSystem(), NewItems()}
}
