package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kolah/relay/httperr"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is a matched inbound request.
type Request struct {
	Method string
	// Path is the route path the request matched, not the request URL.
	Path    string
	URL     *url.URL
	Params  map[string]string
	Query   map[string]any
	Headers map[string]string
	// Payload is the parsed body: decoded JSON, a map for form data, a
	// string for text, raw bytes otherwise. Nil when the body is empty.
	Payload any
	Auth    AuthState

	raw *http.Request
}

func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// Raw returns the underlying *http.Request.
func (r *Request) Raw() *http.Request {
	return r.raw
}

// newRequest describes r without its payload; see parsePayload.
func (s *Server) newRequest(r *http.Request, routePath string, params map[string]string) *Request {
	return &Request{
		Method:  r.Method,
		Path:    routePath,
		URL:     r.URL,
		Params:  params,
		Query:   flattenValues(r.URL.Query()),
		Headers: lowerHeaders(r),
		raw:     r,
	}
}

// flattenValues keeps single values as strings and repeated keys as
// []string.
func flattenValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
		} else {
			out[key] = append([]string(nil), vals...)
		}
	}
	return out
}

func lowerHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+1)
	for key, vals := range r.Header {
		out[strings.ToLower(key)] = strings.Join(vals, ", ")
	}
	if r.Host != "" {
		out["host"] = r.Host
	}
	return out
}

func (s *Server) parsePayload(r *http.Request) (any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, httperr.RequestEntityTooLarge(
				fmt.Sprintf("Payload content length greater than maximum allowed: %d", tooLarge.Limit))
		}
		return nil, httperr.BadRequest("Invalid request payload")
	}
	if len(data) == 0 {
		return nil, nil
	}

	mediaType := "application/json"
	if header := r.Header.Get("Content-Type"); header != "" {
		mediaType, _, err = mime.ParseMediaType(header)
		if err != nil {
			return nil, httperr.UnsupportedMediaType("Invalid content-type header")
		}
	}

	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		var v any
		if err := jsonCodec.Unmarshal(data, &v); err != nil {
			return nil, httperr.BadRequest("Invalid request payload JSON format")
		}
		return v, nil
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, httperr.BadRequest("Invalid request payload format")
		}
		return flattenValues(values), nil
	case strings.HasPrefix(mediaType, "text/"):
		return string(data), nil
	default:
		return data, nil
	}
}
