package api

import "net/http"

// Response is an envelope a handler returns to control the status code,
// content type or headers of its response.
type Response struct {
	Value       any
	StatusCode  int
	ContentType string
	Headers     map[string]string
}

// Respond wraps value in an envelope with status 200.
func Respond(value any) *Response {
	return &Response{
		Value:      value,
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
	}
}

func (r *Response) Code(status int) *Response {
	r.StatusCode = status
	return r
}

func (r *Response) Type(contentType string) *Response {
	r.ContentType = contentType
	return r
}

func (r *Response) Header(key, value string) *Response {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[key] = value
	return r
}
