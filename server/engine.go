package server

import (
	"fmt"
	"net/http"
)

// ParamHandler receives a matched request with the values of the pattern's
// fields (see Pattern.Fields). escaped reports that the router matched on
// the raw, still percent-encoded path.
type ParamHandler func(w http.ResponseWriter, r *http.Request, fields map[string]string, escaped bool)

// Engine is the router library doing the actual request matching.
type Engine interface {
	Name() string
	// Handle registers h for method and pattern. The pattern never contains
	// optional segments; the server expands them first.
	Handle(method string, pattern Pattern, h ParamHandler) error
	// NotFound sets the handler for requests no route matches, including
	// method mismatches.
	NotFound(h http.Handler)
	http.Handler
}

// Engines lists the names accepted by NewEngine.
var Engines = []string{"chi", "echo", "stdlib"}

func NewEngine(name string) (Engine, error) {
	switch name {
	case "", "chi":
		return NewChiEngine(), nil
	case "echo":
		return NewEchoEngine(), nil
	case "stdlib":
		return NewStdlibEngine(), nil
	default:
		return nil, fmt.Errorf("unsupported engine: %s (valid: chi, echo, stdlib)", name)
	}
}

// rawPathUsed reports whether routers that prefer the escaped path matched
// r against r.URL.RawPath.
func rawPathUsed(r *http.Request) bool {
	return r.URL.RawPath != ""
}

func recoverRegistration(method string, pattern Pattern, err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("registering %s %s: %v", method, pattern.Raw, rec)
	}
}
