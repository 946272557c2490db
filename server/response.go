package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kolah/relay/httperr"
	"go.uber.org/zap"
)

// Response is what a Handler returns: a source value plus status, type and
// headers.
type Response struct {
	Source     any
	StatusCode int
	Header     http.Header

	contentType string
}

// NewResponse returns a 200 response for source.
func NewResponse(source any) *Response {
	return &Response{
		Source:     source,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
	}
}

func (r *Response) Code(status int) *Response {
	r.StatusCode = status
	return r
}

// Type overrides the content type chosen from the source.
func (r *Response) Type(contentType string) *Response {
	r.contentType = contentType
	return r
}

func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

func (r *Response) ContentType() string {
	return r.contentType
}

// encode serializes source. Strings and bytes are written as-is, everything
// else as JSON.
func encode(source any, contentType string) ([]byte, string, error) {
	switch v := source.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), withCharset(orDefault(contentType, "text/plain")), nil
	case []byte:
		return v, withCharset(orDefault(contentType, "application/octet-stream")), nil
	default:
		data, err := jsonCodec.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return data, withCharset(orDefault(contentType, "application/json")), nil
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func withCharset(contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "charset=") {
		return contentType
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	if strings.HasPrefix(mediaType, "text/") || mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return contentType + "; charset=utf-8"
	}
	return contentType
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, res *Response) int {
	body, contentType, err := encode(res.Source, res.contentType)
	if err != nil {
		return s.writeError(w, r, httperr.Internal(fmt.Errorf("encoding response: %w", err)))
	}

	h := w.Header()
	for key, vals := range res.Header {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), vals...)
	}

	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if res.Source == nil {
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
		return status
	}

	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
	return status
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) int {
	httpErr := httperr.Wrap(err)
	if httpErr.IsServer() {
		s.logger.Error("request failed",
			zap.String("incident", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", httpErr.StatusCode),
			zap.Error(err))
	} else {
		s.logger.Debug("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", httpErr.StatusCode),
			zap.String("message", httpErr.Error()))
	}

	body, _ := jsonCodec.Marshal(httpErr.Payload())
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(httpErr.StatusCode)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
	return httpErr.StatusCode
}
