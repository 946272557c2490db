// Package adapter turns api route descriptors into server registrations.
package adapter

import (
	"github.com/kolah/relay/api"
	"github.com/kolah/relay/httperr"
	"github.com/kolah/relay/server"
)

// ToServerRoute adapts one descriptor. Routes declared with api.AuthNone
// skip authentication; every other policy runs the server strategies in
// try mode and leaves enforcement to the policy itself.
func ToServerRoute(route api.Route) server.Route {
	var (
		description string
		contentType string
		strategies  []string
	)
	if md := route.Metadata; md != nil {
		description = md.Description
		contentType = md.ContentType
		if len(md.AuthStrategies) > 0 {
			strategies = append([]string(nil), md.AuthStrategies...)
		}
	}

	auth := &server.RouteAuth{Disabled: true}
	if !route.Auth.IsNone() {
		auth = &server.RouteAuth{Mode: server.AuthModeTry, Strategies: strategies}
	}

	return server.Route{
		Method:  route.Method,
		Path:    route.Path,
		Handler: handlerFor(route, contentType),
		Options: server.RouteOptions{
			Auth:        auth,
			Description: description,
		},
	}
}

func handlerFor(route api.Route, contentType string) server.Handler {
	return func(req *server.Request) (*server.Response, error) {
		result, err := route.Invoke(req.Context(), toAPIRequest(req))
		if err != nil {
			return nil, httperr.Wrap(err)
		}
		return shape(result, contentType), nil
	}
}

func toAPIRequest(req *server.Request) *api.Request {
	return &api.Request{
		Query:   req.Query,
		Params:  req.Params,
		Headers: req.Headers,
		Body:    req.Payload,
		Auth:    req.Auth.Credentials,
	}
}

// shape maps a handler result onto a server response. The envelope's content
// type wins over the route's; a plain value only gets the route's.
func shape(result any, contentType string) *server.Response {
	var envelope *api.Response
	switch v := result.(type) {
	case *api.Response:
		if v == nil {
			return server.NewResponse(nil)
		}
		envelope = v
	case api.Response:
		envelope = &v
	default:
		res := server.NewResponse(result)
		if contentType != "" {
			res.Type(contentType)
		}
		return res
	}

	res := server.NewResponse(envelope.Value)
	if envelope.StatusCode != 0 {
		res.Code(envelope.StatusCode)
	}
	switch {
	case envelope.ContentType != "":
		res.Type(envelope.ContentType)
	case contentType != "":
		res.Type(contentType)
	}
	for key, value := range envelope.Headers {
		res.SetHeader(key, value)
	}
	return res
}
