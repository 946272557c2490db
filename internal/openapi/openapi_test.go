package openapi

import (
	"testing"

	"github.com/kolah/relay/internal/loader"
	"github.com/kolah/relay/internal/model"
	"github.com/kolah/relay/server"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func route(t *testing.T, method, path string, auth server.EffectiveAuth, desc string) server.RouteInfo {
	t.Helper()
	p, err := server.ParsePattern(path)
	require.NoError(t, err)
	return server.RouteInfo{Method: method, Path: path, Pattern: p, Auth: auth, Description: desc}
}

func TestBuild(t *testing.T) {
	routes := []server.RouteInfo{
		route(t, "GET", "/", server.EffectiveAuth{Disabled: true}, "Root"),
		route(t, "GET", "/items/{id}", server.EffectiveAuth{Mode: server.AuthModeRequired, Strategies: []string{"token", "key"}}, ""),
		route(t, "GET", "/files/{path*}", server.EffectiveAuth{Mode: server.AuthModeTry, Strategies: []string{"token"}}, ""),
		route(t, "GET", "/users/{tab?}", server.EffectiveAuth{Disabled: true}, ""),
		route(t, "GET", "/span/{s*2}", server.EffectiveAuth{Disabled: true}, ""),
	}
	schemes := map[string]server.Scheme{
		"token": {Type: "http", Scheme: "bearer"},
		"key":   {Type: "apiKey", In: "header", Name: "X-API-Key"},
	}

	out, err := Build(Info{Title: "relay", Version: "1.0.0"}, routes, schemes)
	require.NoError(t, err)

	result, err := loader.Load(out)
	require.NoError(t, err)
	require.Equal(t, Version, result.Version)

	spec, err := loader.Transform(result)
	require.NoError(t, err)
	require.Equal(t, "relay", spec.Info.Title)

	ops := make(map[string]model.Operation)
	for _, op := range spec.Operations {
		ops[string(op.Method)+" "+op.Path] = op
	}
	require.Len(t, ops, 7)

	root := ops["GET /"]
	require.Equal(t, "get", root.ID)
	require.Equal(t, "Root", root.Summary)
	require.Empty(t, root.Security)

	item := ops["GET /items/{id}"]
	require.Equal(t, "getItemsByID", item.ID)
	require.Equal(t, []model.SecurityRequirement{{Schemes: []string{"token"}}, {Schemes: []string{"key"}}}, item.Security)
	require.Len(t, item.Parameters, 1)
	require.Equal(t, "id", item.Parameters[0].Name)
	require.True(t, item.Parameters[0].Required)

	files := ops["GET /files/{path}"]
	require.Equal(t, []model.SecurityRequirement{{Schemes: []string{"token"}}, {}}, files.Security)
	filesRoot, ok := ops["GET /files"]
	require.True(t, ok)
	require.Empty(t, filesRoot.Parameters)
	require.Equal(t, files.Security, filesRoot.Security)

	span := ops["GET /span/{s__0}/{s__1}"]
	require.Len(t, span.Parameters, 2)
	require.Equal(t, "s__0", span.Parameters[0].Name)

	require.Contains(t, ops, "GET /users")
	require.Contains(t, ops, "GET /users/{tab}")

	bearer := spec.SchemeByName("token")
	require.NotNil(t, bearer)
	require.Equal(t, model.SecurityHTTP, bearer.Type)
	require.Equal(t, "bearer", bearer.Scheme)
	key := spec.SchemeByName("key")
	require.NotNil(t, key)
	require.Equal(t, "X-API-Key", key.ParamName)
}

func TestBuildDisabledSecurityIsExplicit(t *testing.T) {
	out, err := Build(Info{Title: "t", Version: "1"}, []server.RouteInfo{
		route(t, "POST", "/open", server.EffectiveAuth{Disabled: true}, ""),
	}, nil)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	paths := doc["paths"].(map[string]any)
	op := paths["/open"].(map[string]any)["post"].(map[string]any)
	require.Equal(t, []any{}, op["security"])
	require.NotContains(t, doc, "components")
}

func TestBuildOperationIDsAreUnique(t *testing.T) {
	out, err := Build(Info{Title: "t", Version: "1"}, []server.RouteInfo{
		route(t, "GET", "/a-b", server.EffectiveAuth{Disabled: true}, ""),
		route(t, "GET", "/a_b", server.EffectiveAuth{Disabled: true}, ""),
	}, nil)
	require.NoError(t, err)
	require.Contains(t, string(out), "operationId: getAB\n")
	require.Contains(t, string(out), "operationId: getAB2\n")
}

func TestBuildRejectsDuplicateOperations(t *testing.T) {
	_, err := Build(Info{Title: "t", Version: "1"}, []server.RouteInfo{
		route(t, "GET", "/users/{id}", server.EffectiveAuth{Disabled: true}, ""),
		route(t, "GET", "/users/{name}", server.EffectiveAuth{Disabled: true}, ""),
	}, nil)
	require.ErrorContains(t, err, "duplicate operation")
}

func TestPath(t *testing.T) {
	tests := map[string]string{
		"/":                "/",
		"/a/{b}":           "/a/{b}",
		"/files/{rest*}":   "/files/{rest}",
		"/users/{id}/{x?}": "/users/{id}/{x}",
		"/m/{b*2}/{c?}":    "/m/{b__0}/{b__1}/{c}",
	}
	for in, want := range tests {
		p, err := server.ParsePattern(in)
		require.NoError(t, err)
		require.Equal(t, want, Path(p), in)
	}
}
