// Package apiclient - Handles all interaction with the upstream issue backend
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ErrNetwork marks failures where the backend could not be reached at all.
var ErrNetwork = errors.New("network error")

// APIError is returned for every failed call except 404. Message is the best
// effort, user presentable reason.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a call that did not fail. NotFound is set for HTTP 404,
// which callers treat as "no data available".
type Result struct {
	NotFound bool
	Body     json.RawMessage
}

// Decode unmarshals the body into v. A not-found result leaves v untouched.
func (r Result) Decode(v any) error {
	if r.NotFound || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Transport performs one-shot JSON requests against the backend base URL. There are no
// retries and no timeout beyond the http.Client's own.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTransport creates a transport for baseURL. A nil client means http.DefaultClient.
func NewTransport(baseURL string, httpClient *http.Client, logger *zap.Logger) *Transport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the configured backend address.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Get issues a GET with params encoded as a query string.
func (t *Transport) Get(ctx context.Context, endpoint string, params url.Values) (Result, error) {
	return t.Request(ctx, http.MethodGet, endpoint, params, nil)
}

// Post sends body as JSON.
func (t *Transport) Post(ctx context.Context, endpoint string, body any) (Result, error) {
	return t.Request(ctx, http.MethodPost, endpoint, nil, body)
}

// Put sends body as JSON.
func (t *Transport) Put(ctx context.Context, endpoint string, body any) (Result, error) {
	return t.Request(ctx, http.MethodPut, endpoint, nil, body)
}

// Delete issues a DELETE.
func (t *Transport) Delete(ctx context.Context, endpoint string) (Result, error) {
	return t.Request(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Request performs a single call. 404 yields Result{NotFound: true} and no error; any
// other non-2xx yields an *APIError carrying the backend's detail or message field.
func (t *Transport) Request(ctx context.Context, method, endpoint string, params url.Values, body any) (Result, error) {
	target := t.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Result{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	t.logger.Debug("API request", zap.String("method", method), zap.String("url", target))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		t.logger.Warn("network error - check if the API server is running",
			zap.String("base_url", t.baseURL), zap.String("endpoint", endpoint), zap.Error(err))
		return Result{}, &APIError{Message: ErrNetwork.Error(), Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &APIError{StatusCode: resp.StatusCode, Message: ErrNetwork.Error(), Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		t.logger.Warn("endpoint not found", zap.String("url", target))
		return Result{NotFound: true}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		t.logger.Error("API request failed", zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return Result{}, apiErr
	}

	return Result{Body: data}, nil
}

// errorMessage pulls detail or message out of an error body, falling back to the status.
func errorMessage(status int, data []byte) string {
	var body struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := messageText(body.Detail); msg != "" {
			return msg
		}
		if msg := messageText(body.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("API error: %d", status)
}

func messageText(v any) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	default:
		encoded, err := json.Marshal(m)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// IsNetworkError reports whether err means the backend was unreachable.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}
