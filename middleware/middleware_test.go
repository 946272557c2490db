package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSpec = `
openapi: "3.0.0"
info:
  title: Test API
  version: "1.0"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: OK
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required:
                - name
              properties:
                name:
                  type: string
      responses:
        "201":
          description: Created
  /pets/{id}:
    get:
      operationId: getPet
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: OK
`

func newHandler(t *testing.T, opts *Options) http.Handler {
	t.Helper()
	mw, err := New([]byte(testSpec), opts)
	require.NoError(t, err)
	return mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	mw, err := New([]byte(testSpec), nil)
	require.NoError(t, err)
	require.NotNil(t, mw)

	_, err = New([]byte("not: [an openapi document"), nil)
	require.Error(t, err)
}

func TestMiddleware_RequestValidation(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	h := newHandler(t, opts)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "valid body", method: http.MethodPost, target: "/pets", body: `{"name":"rex"}`, want: http.StatusTeapot},
		{name: "missing required field", method: http.MethodPost, target: "/pets", body: `{}`, want: http.StatusBadRequest},
		{name: "valid path param", method: http.MethodGet, target: "/pets/12", want: http.StatusTeapot},
		{name: "invalid path param", method: http.MethodGet, target: "/pets/abc", want: http.StatusBadRequest},
		{name: "invalid query param", method: http.MethodGet, target: "/pets?limit=many", want: http.StatusBadRequest},
		{name: "unknown path skipped", method: http.MethodGet, target: "/owners", want: http.StatusTeapot},
		{name: "unknown method skipped", method: http.MethodDelete, target: "/pets", want: http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMiddleware_ErrorBody(t *testing.T) {
	h := newHandler(t, nil)
	rec := serve(h, http.MethodPost, "/pets", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["statusCode"])
	assert.Equal(t, "Bad Request", body["error"])
	assert.Equal(t, "Request validation failed", body["message"])

	details, ok := body["details"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, details)
	first, ok := details[0].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, first["message"])
}

func TestMiddleware_StrictPaths(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipUnknownPaths = false
	h := newHandler(t, opts)

	rec := serve(h, http.MethodGet, "/owners", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware_ErrorHandler(t *testing.T) {
	var got *ValidationError
	opts := DefaultOptions()
	opts.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err *ValidationError) {
		got = err
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	h := newHandler(t, opts)

	rec := serve(h, http.MethodPost, "/pets", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, http.StatusBadRequest, got.StatusCode)
	require.NotEmpty(t, got.Errors)
	require.Equal(t, "Request validation failed", got.Error())
}

func TestValidationErrorBody(t *testing.T) {
	body := (&ValidationError{Message: "nope"}).Body()
	require.Equal(t, 400, body.StatusCode)
	require.Equal(t, "nope", body.Message)
	require.Empty(t, body.Details)
	require.NotNil(t, body.Details)
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/pets", "/pets", true},
		{"/pets/{id}", "/pets/123", true},
		{"/pets/{id}", "/pets/abc-def", true},
		{"/pets/{id}/photos/{photoId}", "/pets/1/photos/2", true},
		{"/", "/", true},
		{"/pets", "/pets/123", false},
		{"/pets/{id}", "/pets", false},
		{"/pets/{id}", "/users/123", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, matchPath(tt.pattern, tt.path))
		})
	}
}
