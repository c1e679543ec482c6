package testutil

import (
	"net/http"
	"time"

	"gymdesk/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, as the RequestID middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock so stored timestamps are predictable.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
