package codegen

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kolah/relay/internal/config"
	"github.com/kolah/relay/internal/golang"
	"github.com/kolah/relay/internal/model"
	"github.com/kolah/relay/internal/templates"
	"github.com/kolah/relay/server"
	embeddedtmpl "github.com/kolah/relay/templates"
)

const controllerTemplate = "go/controller.tmpl"

type Generator struct {
	config *config.GenConfig
	engine templates.Engine
}

type Output struct {
	Filename string
	Content  string
}

func New(cfg *config.GenConfig) (*Generator, error) {
	engine, err := templates.NewEngine(embeddedtmpl.FS, cfg.Templates, golang.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}

	return &Generator{
		config: cfg,
		engine: engine,
	}, nil
}

type controllerData struct {
	Package  string
	Title    string
	Version  string
	Routes   []routeData
	SpecData string
}

type routeData struct {
	Name       string
	Method     string
	Path       string
	Auth       string
	Options    []string
	Doc        string
	Deprecated bool
}

// Generate renders the registration table for spec. specData is embedded in
// the output as-is.
func (g *Generator) Generate(spec *model.Spec, specData []byte) (*Output, error) {
	data := controllerData{
		Package:  g.config.Package,
		Title:    spec.Info.Title,
		Version:  spec.Info.Version,
		SpecData: base64.StdEncoding.EncodeToString(specData),
	}

	used := make(map[string]int)
	for _, op := range spec.Operations {
		route, err := buildRoute(op)
		if err != nil {
			return nil, err
		}
		route.Name = uniqueName(used, route.Name)
		route.Doc = routeDoc(route.Name, op)
		data.Routes = append(data.Routes, route)
	}

	content, err := g.engine.Execute(controllerTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("generating controller: %w", err)
	}
	formatted, err := golang.Format(g.config.Output, []byte(content))
	if err != nil {
		return nil, fmt.Errorf("formatting controller: %w", err)
	}

	return &Output{
		Filename: g.config.Output,
		Content:  string(formatted),
	}, nil
}

func buildRoute(op model.Operation) (routeData, error) {
	method := string(op.Method)
	if _, err := server.ParsePattern(op.Path); err != nil {
		return routeData{}, fmt.Errorf("operation %s %s: %w", method, op.Path, err)
	}

	auth, strategies := authPolicy(op.Security)
	route := routeData{
		Name:       golang.HandlerName(op.ID, method, op.Path),
		Method:     method,
		Path:       op.Path,
		Auth:       auth,
		Deprecated: op.Deprecated,
	}

	if desc := firstLine(op.Summary, op.Description); desc != "" {
		route.Options = append(route.Options, "api.Description("+strconv.Quote(desc)+")")
	}
	if ct := op.SuccessMediaType(); ct != "" && !isJSON(ct) {
		route.Options = append(route.Options, "api.ContentType("+strconv.Quote(ct)+")")
	}
	if len(strategies) > 0 {
		quoted := make([]string, len(strategies))
		for i, s := range strategies {
			quoted[i] = strconv.Quote(s)
		}
		route.Options = append(route.Options, "api.AuthStrategies("+strings.Join(quoted, ", ")+")")
	}

	return route, nil
}

// authPolicy maps effective security requirements onto an api policy
// expression and the scheme names to try, in declaration order.
func authPolicy(reqs []model.SecurityRequirement) (string, []string) {
	if len(reqs) == 0 {
		return "api.AuthNone", nil
	}

	policy := "api.AuthRequired"
	var strategies []string
	for _, req := range reqs {
		if len(req.Schemes) == 0 {
			policy = "api.AuthOptional"
			continue
		}
		for _, name := range req.Schemes {
			if !slices.Contains(strategies, name) {
				strategies = append(strategies, name)
			}
		}
	}
	if len(strategies) == 0 {
		return "api.AuthNone", nil
	}
	return policy, strategies
}

func isJSON(mediaType string) bool {
	mediaType, _, _ = strings.Cut(mediaType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func firstLine(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		line, _, _ := strings.Cut(c, "\n")
		return strings.TrimSpace(line)
	}
	return ""
}

func routeDoc(name string, op model.Operation) string {
	doc := fmt.Sprintf("%s handles %s %s.", name, op.Method, op.Path)
	if op.Summary != "" {
		doc += "\n\n" + op.Summary
	}
	return doc
}

func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s%d", name, n)
	}
	return name
}
