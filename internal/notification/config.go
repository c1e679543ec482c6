package notification

import "time"

const defaultGatewayTimeout = 15 * time.Second

// Config carries everything the dispatcher needs from process configuration.
// It is built once at startup and injected; nothing here reads the environment.
type Config struct {
	// Endpoint is the full URL of the gateway's send endpoint.
	Endpoint string

	// Token is sent as "Authorization: Bearer <token>".
	Token string

	SenderID string

	// LoginURL is embedded in onboarding messages.
	LoginURL string

	// Timeout bounds one gateway call. Zero means 15s.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultGatewayTimeout
	}
	return c.Timeout
}
