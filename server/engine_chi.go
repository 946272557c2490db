package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ChiEngine struct {
	router chi.Router
}

func NewChiEngine() *ChiEngine {
	return &ChiEngine{router: chi.NewRouter()}
}

func (e *ChiEngine) Name() string {
	return "chi"
}

// ConvertPath renders a pattern in chi syntax: /files/{id}/* for a trailing
// wildcard.
func (e *ChiEngine) ConvertPath(p Pattern) string {
	return p.Format(func(seg Segment) string {
		if seg.Kind == SegmentWildcard {
			return "*"
		}
		return "{" + seg.Value + "}"
	})
}

func (e *ChiEngine) Handle(method string, pattern Pattern, h ParamHandler) (err error) {
	defer recoverRegistration(method, pattern, &err)

	names := pattern.Fields()
	wildcard, _ := pattern.Wildcard()

	chi.RegisterMethod(method)
	e.router.MethodFunc(method, e.ConvertPath(pattern), func(w http.ResponseWriter, r *http.Request) {
		fields := make(map[string]string, len(names))
		for _, name := range names {
			if name == wildcard {
				fields[name] = chi.URLParam(r, "*")
			} else {
				fields[name] = chi.URLParam(r, name)
			}
		}
		h(w, r, fields, rawPathUsed(r))
	})
	return nil
}

func (e *ChiEngine) NotFound(h http.Handler) {
	e.router.NotFound(h.ServeHTTP)
	e.router.MethodNotAllowed(h.ServeHTTP)
}

func (e *ChiEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.router.ServeHTTP(w, r)
}
