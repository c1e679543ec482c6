package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient_Send(t *testing.T) {
	t.Run("joins recipients and returns provider message id", func(t *testing.T) {
		var got sendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, `{"status":"success","message":"queued","data":{"uid":"abc"}}`)
		}))
		defer srv.Close()

		client := NewGatewayClient(Config{Endpoint: srv.URL, Token: "t", SenderID: "GymDesk"}, nil)
		res, err := client.Send(context.Background(), []string{"94712345678", "94777654321"}, "hello")
		require.NoError(t, err)

		assert.Equal(t, "94712345678,94777654321", got.Recipient)
		assert.Equal(t, "hello", got.Message)
		assert.Equal(t, "abc", res.MessageID)
		assert.Equal(t, "queued", res.Message)
	})

	t.Run("non-JSON error body becomes the provider message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream exploded\n")
		}))
		defer srv.Close()

		client := NewGatewayClient(Config{Endpoint: srv.URL}, nil)
		_, err := client.Send(context.Background(), []string{"94712345678"}, "hello")

		var gwErr *GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
		assert.Equal(t, "upstream exploded", gwErr.ProviderMessage)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"status":"success"}`)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewGatewayClient(Config{Endpoint: srv.URL}, nil)
		_, err := client.Send(ctx, []string{"94712345678"}, "hello")

		var gwErr *GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Zero(t, gwErr.StatusCode)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
