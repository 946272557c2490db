package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler is called when validation fails.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *ValidationError)

// Options configures middleware behavior.
type Options struct {
	// SkipUnknownPaths passes requests for paths the document does not
	// describe straight to the next handler.
	SkipUnknownPaths bool
	ErrorHandler     ErrorHandler
	Logger           *zap.Logger
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		SkipUnknownPaths: true,
		Logger:           zap.NewNop(),
	}
}
