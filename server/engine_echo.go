package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type EchoEngine struct {
	echo     *echo.Echo
	notFound http.Handler
}

func NewEchoEngine() *EchoEngine {
	e := &EchoEngine{
		echo:     echo.New(),
		notFound: http.NotFoundHandler(),
	}
	e.echo.HideBanner = true
	e.echo.HidePort = true
	// Route handlers never return errors, so only routing failures
	// (404, 405) arrive here.
	e.echo.HTTPErrorHandler = func(_ error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		e.notFound.ServeHTTP(c.Response(), c.Request())
	}
	return e
}

func (e *EchoEngine) Name() string {
	return "echo"
}

// ConvertPath renders a pattern in echo syntax: /files/:id/* for a trailing
// wildcard.
func (e *EchoEngine) ConvertPath(p Pattern) string {
	return p.Format(func(seg Segment) string {
		if seg.Kind == SegmentWildcard {
			return "*"
		}
		return ":" + seg.Value
	})
}

func (e *EchoEngine) Handle(method string, pattern Pattern, h ParamHandler) (err error) {
	defer recoverRegistration(method, pattern, &err)

	names := pattern.Fields()
	wildcard, _ := pattern.Wildcard()

	e.echo.Add(method, e.ConvertPath(pattern), func(c echo.Context) error {
		fields := make(map[string]string, len(names))
		for _, name := range names {
			if name == wildcard {
				fields[name] = c.Param("*")
			} else {
				fields[name] = c.Param(name)
			}
		}
		h(c.Response(), c.Request(), fields, rawPathUsed(c.Request()))
		return nil
	})
	return nil
}

func (e *EchoEngine) NotFound(h http.Handler) {
	e.notFound = h
}

func (e *EchoEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.echo.ServeHTTP(w, r)
}
