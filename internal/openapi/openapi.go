// Package openapi describes a server's route table as an OpenAPI 3.1
// document.
package openapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kolah/relay/internal/golang"
	"github.com/kolah/relay/internal/loader"
	"github.com/kolah/relay/server"
	"go.yaml.in/yaml/v4"
)

const Version = "3.1.0"

type Info struct {
	Title       string
	Version     string
	Description string
}

type document struct {
	OpenAPI    string                           `yaml:"openapi"`
	Info       info                             `yaml:"info"`
	Paths      map[string]map[string]*operation `yaml:"paths"`
	Components *components                      `yaml:"components,omitempty"`
}

type info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
}

type operation struct {
	OperationID string              `yaml:"operationId"`
	Summary     string              `yaml:"summary,omitempty"`
	Parameters  []parameter         `yaml:"parameters,omitempty"`
	Security    *[]requirement      `yaml:"security,omitempty"`
	Responses   map[string]response `yaml:"responses"`
}

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
	Schema   schema `yaml:"schema"`
}

type schema struct {
	Type string `yaml:"type"`
}

type requirement map[string][]string

type response struct {
	Description string `yaml:"description"`
}

type components struct {
	SecuritySchemes map[string]securityScheme `yaml:"securitySchemes"`
}

type securityScheme struct {
	Type   string `yaml:"type"`
	Scheme string `yaml:"scheme,omitempty"`
	In     string `yaml:"in,omitempty"`
	Name   string `yaml:"name,omitempty"`
}

// Build renders routes as an OpenAPI document. Optional trailing parameters
// produce one path per variant and wildcards become plain path parameters.
// Only schemes present in schemes are described under components.
func Build(meta Info, routes []server.RouteInfo, schemes map[string]server.Scheme) ([]byte, error) {
	doc := document{
		OpenAPI: Version,
		Info: info{
			Title:       meta.Title,
			Version:     meta.Version,
			Description: meta.Description,
		},
		Paths: make(map[string]map[string]*operation),
	}

	used := make(map[string]bool)
	for _, route := range routes {
		for _, variant := range route.Pattern.Variants() {
			path := Path(variant)
			method := strings.ToLower(route.Method)
			if doc.Paths[path] == nil {
				doc.Paths[path] = make(map[string]*operation)
			}
			if _, ok := doc.Paths[path][method]; ok {
				return nil, fmt.Errorf("duplicate operation %s %s", route.Method, path)
			}
			doc.Paths[path][method] = buildOperation(route, variant, path, used)
		}
	}

	if len(schemes) > 0 {
		doc.Components = &components{SecuritySchemes: make(map[string]securityScheme, len(schemes))}
		for name, s := range schemes {
			doc.Components.SecuritySchemes[name] = securityScheme{
				Type:   s.Type,
				Scheme: s.Scheme,
				In:     s.In,
				Name:   s.Name,
			}
		}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding OpenAPI document: %w", err)
	}
	if _, err := loader.Load(out, loader.RequireVersion(Version)); err != nil {
		return nil, fmt.Errorf("validating OpenAPI document: %w", err)
	}
	return out, nil
}

// Path renders a route pattern in OpenAPI path template syntax.
func Path(p server.Pattern) string {
	return p.Format(func(seg server.Segment) string {
		return "{" + seg.Value + "}"
	})
}

func buildOperation(route server.RouteInfo, variant server.Pattern, path string, used map[string]bool) *operation {
	op := &operation{
		OperationID: operationID(route.Method, path, used),
		Summary:     route.Description,
		Responses: map[string]response{
			"default": {Description: http.StatusText(http.StatusOK)},
		},
	}

	for _, name := range variant.Fields() {
		op.Parameters = append(op.Parameters, parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   schema{Type: "string"},
		})
	}

	security := []requirement{}
	if !route.Auth.Disabled {
		for _, name := range route.Auth.Strategies {
			security = append(security, requirement{name: {}})
		}
		if route.Auth.Mode != server.AuthModeRequired {
			security = append(security, requirement{})
		}
	}
	op.Security = &security
	return op
}

func operationID(method, path string, used map[string]bool) string {
	base := golang.CamelCase(golang.HandlerName("", method, path))
	id := base
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s%d", base, n)
	}
	used[id] = true
	return id
}
