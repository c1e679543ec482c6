package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/pkg/requestcontext"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.RequestID(r.Context()))
	})
}

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		configured string
		presented  string
		wantStatus int
	}{
		{"matching token", "s3cret", "s3cret", http.StatusOK},
		{"missing token", "s3cret", "", http.StatusForbidden},
		{"wrong token", "s3cret", "s3cre", http.StatusForbidden},
		{"unconfigured token rejects all", "", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAdminToken(tt.configured, logger)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/admin/tenants", nil)
			if tt.presented != "" {
				req.Header.Set(AdminTokenHeader, tt.presented)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"forbidden","error_description":"Missing or invalid admin token"}`, rec.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		RequestID(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Body.String())
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("mints id when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestID(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
	})
}

func TestRequestTime(t *testing.T) {
	var seen []time.Time
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, requestcontext.Now(r.Context()))
	}))

	t.Run("stamps a time", func(t *testing.T) {
		before := time.Now().UTC()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Len(t, seen, 1)
		assert.False(t, seen[0].Before(before))
	})

	t.Run("keeps a pinned time", func(t *testing.T) {
		pinned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithTime(req.Context(), pinned))
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Len(t, seen, 2)
		assert.Equal(t, pinned, seen[1])
	})
}
