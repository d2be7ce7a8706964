// ledger/client.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the ledger, preserved so callers can
// classify it (validation vs decline vs server fault).
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger: %s (%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("ledger: request failed with status %d", e.StatusCode)
}

type ctxKey int

const sessionTokenKey ctxKey = iota

// WithSessionToken attaches the caller's bearer token so requests made on
// their behalf reach the ledger as them. The token survives context
// detachment (context.WithoutCancel) because it rides on values.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}

func sessionToken(ctx context.Context) string {
	if t, ok := ctx.Value(sessionTokenKey).(string); ok {
		return t
	}
	return ""
}

// Client talks to the remote ledger API. The ledger is authoritative for
// balances and transaction outcomes; this client never interprets beyond
// decoding.
type Client struct {
	BaseURL    string
	AuthToken  string
	HttpClient *http.Client
}

func NewClient(baseURL, authToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		AuthToken:  authToken,
		HttpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	token := sessionToken(ctx)
	if token == "" {
		token = c.AuthToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if raw, rerr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); rerr == nil {
			if jerr := json.Unmarshal(raw, &envelope); jerr == nil {
				apiErr.Code = envelope.Code
				apiErr.Message = envelope.Message
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
