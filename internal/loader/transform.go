package loader

import (
	"slices"
	"strings"

	"github.com/kolah/relay/internal/model"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

func Transform(result *Result) (*model.Spec, error) {
	doc := result.Document.Model

	spec := &model.Spec{
		Info: transformInfo(doc.Info),
	}

	if doc.Components != nil && doc.Components.SecuritySchemes != nil {
		for name, scheme := range doc.Components.SecuritySchemes.FromOldest() {
			spec.Security = append(spec.Security, transformSecurityScheme(name, scheme))
		}
	}

	global := transformSecurity(doc.Security)

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			spec.Operations = append(spec.Operations, transformPath(pathStr, pathItem, global)...)
		}
	}

	return spec, nil
}

// FilterTags keeps operations carrying one of include (all when include is
// empty) and none of exclude.
func FilterTags(spec *model.Spec, include, exclude []string) {
	if len(include) == 0 && len(exclude) == 0 {
		return
	}
	spec.Operations = slices.DeleteFunc(spec.Operations, func(op model.Operation) bool {
		if len(include) > 0 && !hasAnyTag(op.Tags, include) {
			return true
		}
		return hasAnyTag(op.Tags, exclude)
	})
}

func hasAnyTag(tags, want []string) bool {
	for _, t := range tags {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	return model.Info{
		Title:       info.Title,
		Description: info.Description,
		Version:     info.Version,
	}
}

func transformPath(pathStr string, pathItem *v3.PathItem, global []model.SecurityRequirement) []model.Operation {
	var ops []model.Operation

	// Use a slice for deterministic ordering
	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		ops = append(ops, transformOperation(m.method, pathStr, m.op, pathItem.Parameters, global))
	}

	return ops
}

func transformOperation(method model.Method, path string, op *v3.Operation, shared []*v3.Parameter, global []model.SecurityRequirement) model.Operation {
	operation := model.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  boolPtr(op.Deprecated),
		Security:    global,
	}

	for _, p := range shared {
		operation.Parameters = append(operation.Parameters, transformParameter(p))
	}
	for _, p := range op.Parameters {
		operation.Parameters = append(operation.Parameters, transformParameter(p))
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		for code, resp := range op.Responses.Codes.FromOldest() {
			operation.Responses = append(operation.Responses, transformResponse(code, resp))
		}
	}

	if declaresSecurity(op) {
		operation.Security = transformSecurity(op.Security)
	}

	return operation
}

// declaresSecurity reports whether the operation has its own security key,
// including an explicit empty list.
func declaresSecurity(op *v3.Operation) bool {
	if op.Security != nil {
		return true
	}
	low := op.GoLow()
	return low != nil && !low.Security.IsEmpty()
}

func transformSecurity(reqs []*base.SecurityRequirement) []model.SecurityRequirement {
	result := make([]model.SecurityRequirement, 0, len(reqs))
	for _, req := range reqs {
		var r model.SecurityRequirement
		if req != nil && req.Requirements != nil {
			for name := range req.Requirements.FromOldest() {
				r.Schemes = append(r.Schemes, name)
			}
		}
		result = append(result, r)
	}
	return result
}

func transformParameter(p *v3.Parameter) model.Parameter {
	return model.Parameter{
		Name:        p.Name,
		In:          model.ParameterLocation(strings.ToLower(p.In)),
		Description: p.Description,
		Required:    boolPtr(p.Required),
	}
}

func transformResponse(code string, resp *v3.Response) model.Response {
	response := model.Response{
		StatusCode:  code,
		Description: resp.Description,
	}

	if resp.Content != nil {
		for mediaType := range resp.Content.FromOldest() {
			response.MediaTypes = append(response.MediaTypes, mediaType)
		}
	}

	return response
}

func transformSecurityScheme(name string, scheme *v3.SecurityScheme) model.SecurityScheme {
	return model.SecurityScheme{
		Name:        name,
		Type:        model.SecuritySchemeType(scheme.Type),
		Scheme:      strings.ToLower(scheme.Scheme),
		In:          scheme.In,
		ParamName:   scheme.Name,
		Description: scheme.Description,
	}
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
