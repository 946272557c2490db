package adapter

import (
	"fmt"

	"github.com/kolah/relay/api"
	"github.com/kolah/relay/server"
)

const (
	PluginName    = "relay-api"
	PluginVersion = "1.0.0"
)

// PluginOptions is the options value Plugin expects.
type PluginOptions struct {
	Controllers []api.Controller
}

// Plugin registers controllers with a server. It may be registered any
// number of times, once per group of controllers.
var Plugin = server.Plugin{
	Name:     PluginName,
	Version:  PluginVersion,
	Multiple: true,
	Register: func(s *server.Server, options any) error {
		switch opts := options.(type) {
		case PluginOptions:
			return RegisterControllers(s, opts.Controllers)
		case *PluginOptions:
			if opts == nil {
				return nil
			}
			return RegisterControllers(s, opts.Controllers)
		default:
			return fmt.Errorf("unexpected options type %T", options)
		}
	},
}
