package model

import "strings"

type Operation struct {
	ID          string
	Method      Method
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	Responses   []Response
	// Security holds the effective requirements: the operation's own, or the
	// document's when the operation declares none. Alternatives are ORed.
	Security []SecurityRequirement
}

// SuccessMediaType returns the first media type of the first 2xx response.
func (o *Operation) SuccessMediaType() string {
	for _, r := range o.Responses {
		if strings.HasPrefix(r.StatusCode, "2") && len(r.MediaTypes) > 0 {
			return r.MediaTypes[0]
		}
	}
	return ""
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

type Parameter struct {
	Name        string
	In          ParameterLocation
	Description string
	Required    bool
}

type Response struct {
	StatusCode  string
	Description string
	MediaTypes  []string
}

// SecurityRequirement is one alternative; every scheme in it must pass. An
// empty requirement means the operation may be called anonymously.
type SecurityRequirement struct {
	Schemes []string
}
