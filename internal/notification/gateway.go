package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	messageTypePlain = "plain"
	statusError      = "error"
	maxResponseBytes = 64 << 10
)

// GatewayError is a send the gateway received and refused, or could not be reached for.
// StatusCode is zero when no HTTP response arrived.
type GatewayError struct {
	StatusCode      int
	ProviderMessage string
	Err             error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("sms gateway unreachable: %v", e.Err)
	}
	return fmt.Sprintf("sms gateway rejected message (HTTP %d): %s", e.StatusCode, e.ProviderMessage)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// SendResult is the gateway's acknowledgement of an accepted message.
type SendResult struct {
	MessageID string
	Message   string
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	SenderID  string `json:"sender_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// GatewayClient posts plain-text SMS messages to the HTTP gateway. It performs exactly one
// request per Send; retry policy belongs to the caller.
type GatewayClient struct {
	endpoint   string
	token      string
	senderID   string
	httpClient *http.Client
}

// NewGatewayClient builds a client from cfg. A nil httpClient gets one with cfg's timeout.
func NewGatewayClient(cfg Config, httpClient *http.Client) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}
	return &GatewayClient{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		senderID:   cfg.SenderID,
		httpClient: httpClient,
	}
}

// Send delivers message to the already-normalized recipients.
func (c *GatewayClient) Send(ctx context.Context, recipients []string, message string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{
		Recipient: strings.Join(recipients, ","),
		SenderID:  c.senderID,
		Type:      messageTypePlain,
		Message:   message,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, ProviderMessage: "unreadable response body", Err: err}
	}

	providerMessage := gjson.GetBytes(respBody, "message").String()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if providerMessage == "" {
			providerMessage = strings.TrimSpace(string(respBody))
		}
		if providerMessage == "" {
			providerMessage = http.StatusText(resp.StatusCode)
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, ProviderMessage: providerMessage}
	}
	if gjson.GetBytes(respBody, "status").String() == statusError {
		if providerMessage == "" {
			providerMessage = "gateway reported an error"
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, ProviderMessage: providerMessage}
	}

	return &SendResult{
		MessageID: gjson.GetBytes(respBody, "data.uid").String(),
		Message:   providerMessage,
	}, nil
}
