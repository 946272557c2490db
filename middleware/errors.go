package middleware

import (
	"net/http"

	"github.com/kolah/relay/httperr"
	"github.com/pb33f/libopenapi-validator/errors"
)

// ValidationError wraps libopenapi-validator errors with HTTP semantics.
type ValidationError struct {
	StatusCode int
	Message    string
	Errors     []*errors.ValidationError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Detail is one validation failure as rendered to the client.
type Detail struct {
	Message  string `json:"message"`
	Reason   string `json:"reason,omitempty"`
	HowToFix string `json:"howToFix,omitempty"`
}

// Body is the rendered error: the httperr payload plus the failures.
type Body struct {
	httperr.Payload
	Details []Detail `json:"details"`
}

// Body returns the client-facing representation of e.
func (e *ValidationError) Body() Body {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusBadRequest
	}
	details := make([]Detail, 0, len(e.Errors))
	for _, v := range e.Errors {
		details = append(details, Detail{
			Message:  v.Message,
			Reason:   v.Reason,
			HowToFix: v.HowToFix,
		})
	}
	return Body{
		Payload: httperr.New(status, e.Message).Payload(),
		Details: details,
	}
}
