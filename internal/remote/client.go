// Package remote sends code to the execution service over HTTP and folds
// every response, or the lack of one, into an execution.Result.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/language"
	"github.com/michaelbrown/codepad/internal/logging"
)

// ExecutePath is appended to the base URL.
const ExecutePath = "/api/execute"

const (
	fallbackOutput = "Code executed successfully"
	fallbackError  = "Unknown error occurred"
)

// Request is the body sent to the execution service.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Response is the body the execution service answers with. Error responses
// may use message or detail instead of error.
type Response struct {
	Output        *string  `json:"output,omitempty"`
	Error         *string  `json:"error,omitempty"`
	Message       *string  `json:"message,omitempty"`
	Detail        *string  `json:"detail,omitempty"`
	ExecutionTime *float64 `json:"execution_time,omitempty"`
}

// Client executes code on a remote service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero, the default, waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ execution.RemoteExecutor = (*Client)(nil)

// Execute posts source to the service and normalizes the outcome.
func (c *Client) Execute(ctx context.Context, source string, lang language.Language) execution.Result {
	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID, "language", lang)

	body, err := json.Marshal(Request{Code: source, Language: string(lang)})
	if err != nil {
		return networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ExecutePath, bytes.NewReader(body))
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	log.Debug("sending execute request", "url", req.URL.String(), "bytes", len(body))
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("execute request failed", "err", err)
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}
	log.Debug("execute response", "status", resp.StatusCode, "bytes", len(data))

	return normalize(resp.StatusCode, data)
}

func normalize(status int, data []byte) execution.Result {
	var r Response
	decodeErr := json.Unmarshal(data, &r)

	if status < 200 || status > 299 {
		msg := fallbackError
		if decodeErr == nil {
			msg = pick(msg, r.Error, r.Message, r.Detail)
		}
		return execution.Failed(fmt.Sprintf("HTTP Error %d: %s", status, msg))
	}

	if decodeErr != nil {
		return networkError(fmt.Errorf("decoding response: %w", decodeErr))
	}
	if r.Error != nil && *r.Error != "" {
		return execution.Failed("Error: " + *r.Error)
	}
	return execution.Succeeded(pick(fallbackOutput, r.Output))
}

func networkError(err error) execution.Result {
	return execution.Failed("Network Error: " + err.Error())
}

// pick returns the first non-empty value, or fallback.
func pick(fallback string, vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return fallback
}
