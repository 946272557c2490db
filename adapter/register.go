package adapter

import (
	"fmt"

	"github.com/kolah/relay/api"
	"github.com/kolah/relay/server"
)

// Registrar accepts server routes. *server.Server satisfies it.
type Registrar interface {
	Route(r server.Route) error
}

// RegisterControllers adapts the routes of every controller, in order, and
// registers them. It stops at the first registration error.
func RegisterControllers(registrar Registrar, controllers []api.Controller) error {
	var routes []api.Route
	for _, c := range controllers {
		routes = append(routes, c.Routes()...)
	}

	for _, route := range routes {
		if err := registrar.Route(ToServerRoute(route)); err != nil {
			return fmt.Errorf("registering %s %s: %w", route.Method, route.Path, err)
		}
	}
	return nil
}
