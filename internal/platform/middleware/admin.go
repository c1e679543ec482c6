package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"gymdesk/pkg/requestcontext"
)

// AdminTokenHeader carries the operator token on every admin request.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken rejects requests whose X-Admin-Token does not match token with 403.
// An empty configured token rejects everything.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := []byte(r.Header.Get(AdminTokenHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(presented, expected) != 1 {
				ctx := r.Context()
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "forbidden admin request",
					"path", r.URL.Path,
					"token_present", len(presented) > 0,
					"request_id", requestID,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, err := w.Write([]byte(`{"error":"forbidden","error_description":"Missing or invalid admin token"}`))
				if err != nil {
					logger.ErrorContext(ctx, "failed to write forbidden response",
						"error", err,
						"request_id", requestID,
					)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
