// Package api is a client for the remote resume service. The service
// authenticates with a cookie session, so each Client carries its own
// cookie jar and should be used by a single editing session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// GenericMessage is shown when the service gives no usable message.
const GenericMessage = "Something went wrong. Please try again."

// ErrNotAuthenticated matches any 401 response.
var ErrNotAuthenticated = errors.New("api: not authenticated")

// Error is a failure reported by the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	return nil
}

// UserMessage returns the service-provided message carried by err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts for GET and DELETE requests
	// that fail in transport or with a gateway error.
	Retries int
	Backoff time.Duration
	Logger  *slog.Logger
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retries int
	Backoff time.Duration
	logger  *slog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTP:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		Retries: cfg.Retries,
		Backoff: cfg.Backoff,
		logger:  cfg.Logger,
	}, nil
}

func (c *Client) Resumes() *ResumeService { return &ResumeService{c: c} }

func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}

func retryable(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

// send performs the request with retry/backoff for idempotent methods and
// returns the status and raw body.
func (c *Client) send(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	attempts := 1
	if idempotent(method) {
		attempts += c.Retries
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err == nil {
			b, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case rerr != nil:
				err = rerr
			case retryable(resp.StatusCode) && i < attempts-1:
				err = &Error{Status: resp.StatusCode}
			default:
				return resp.StatusCode, b, nil
			}
		}
		lastErr = err
		c.logger.Warn("api: request failed", slog.String("method", method), slog.String("path", path), slog.Int("attempt", i+1), slog.String("error", err.Error()))
		// exponential backoff before retrying
		if i < attempts-1 {
			backoff := c.Backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			}
		}
	}
	return 0, nil, lastErr
}

// do sends in as JSON and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = b
	}

	status, raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	var (
		env       envelope
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}
	if status >= 400 {
		return &Error{Status: status, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("api: %s %s: decode: %w", method, path, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return &Error{Status: status, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	data := env.Data
	if len(data) == 0 || string(data) == "null" {
		// some endpoints answer with the bare object
		if env.Success != nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		data = raw
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: %s %s: decode data: %w", method, path, err)
	}
	return nil
}
