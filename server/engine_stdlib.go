package server

import (
	"net/http"
)

// StdlibEngine routes with net/http.ServeMux patterns.
type StdlibEngine struct {
	mux      *http.ServeMux
	notFound http.Handler
	// methods maps every registered ServeMux pattern to its method.
	methods map[string]string
}

func NewStdlibEngine() *StdlibEngine {
	return &StdlibEngine{
		mux:      http.NewServeMux(),
		notFound: http.NotFoundHandler(),
		methods:  make(map[string]string),
	}
}

func (e *StdlibEngine) Name() string {
	return "stdlib"
}

// ConvertPath renders a pattern in ServeMux syntax: /files/{id}/{rest...}
// for a trailing wildcard and /{$} for the root.
func (e *StdlibEngine) ConvertPath(p Pattern) string {
	if len(p.Segments) == 0 {
		return "/{$}"
	}
	return p.Format(func(seg Segment) string {
		if seg.Kind == SegmentWildcard {
			return "{" + seg.Value + "...}"
		}
		return "{" + seg.Value + "}"
	})
}

func (e *StdlibEngine) Handle(method string, pattern Pattern, h ParamHandler) (err error) {
	defer recoverRegistration(method, pattern, &err)

	names := pattern.Fields()
	muxPattern := method + " " + e.ConvertPath(pattern)
	e.mux.HandleFunc(muxPattern, func(w http.ResponseWriter, r *http.Request) {
		fields := make(map[string]string, len(names))
		for _, name := range names {
			fields[name] = r.PathValue(name)
		}
		// PathValue is already unescaped.
		h(w, r, fields, false)
	})
	e.methods[muxPattern] = method
	return nil
}

func (e *StdlibEngine) NotFound(h http.Handler) {
	e.notFound = h
}

// ServeHTTP only dispatches requests that hit a registered pattern with the
// exact method. ServeMux's own redirects, 405 responses and the implicit
// HEAD match for GET patterns go to the not-found handler.
func (e *StdlibEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, pattern := e.mux.Handler(r)
	if method, ok := e.methods[pattern]; !ok || method != r.Method {
		e.notFound.ServeHTTP(w, r)
		return
	}
	e.mux.ServeHTTP(w, r)
}
