package middleware

import (
	"net/http"
	"time"

	"gymdesk/pkg/requestcontext"
)

// RequestTime pins a single "now" for the request so the tenant and its admin
// credential share a created_at. A time already on the context is kept.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(requestcontext.ContextKeyRequestTime).(time.Time); ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
