// Package backend is the HTTP client for the logistics REST API. Every call
// takes the caller's bearer token explicitly; the client holds no credential.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/config"
	"github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

const maxErrorBody = 64 << 10

// Client calls the logistics backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

// apiError is the backend's error body.
type apiError struct {
	Message any    `json:"message"`
	Error   string `json:"error"`
	Status  string `json:"status"`
}

func (e apiError) text() string {
	switch m := e.Message.(type) {
	case string:
		if m != "" {
			return m
		}
	case []any:
		if len(m) > 0 {
			return fmt.Sprint(m[0])
		}
	}
	return e.Error
}

// StatusError carries the raw backend status for callers that branch on it.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errorutil.NewInternalError(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return errorutil.MapError(err)
		}
		return errorutil.NewUpstreamError("logistics backend unreachable", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorutil.NewUpstreamError("invalid backend response", err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body apiError
	_ = json.Unmarshal(raw, &body)

	cause := &StatusError{Code: resp.StatusCode, Status: body.Status, Message: body.text()}
	message := cause.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	var err *errorutil.DomainError
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		err = errorutil.NewDomainError(errorutil.CodeValidation, message, http.StatusBadRequest, nil)
	case resp.StatusCode == http.StatusUnauthorized:
		err = errorutil.NewDomainError(errorutil.CodeUnauthorized, message, http.StatusUnauthorized, nil)
	case resp.StatusCode == http.StatusForbidden:
		err = errorutil.NewDomainError(errorutil.CodeForbidden, message, http.StatusForbidden, nil)
	case resp.StatusCode == http.StatusNotFound:
		err = errorutil.NewDomainError(errorutil.CodeNotFound, message, http.StatusNotFound, nil)
	case resp.StatusCode == http.StatusConflict:
		err = errorutil.NewDomainError(errorutil.CodeConflict, message, http.StatusConflict, nil)
	default:
		err = errorutil.NewDomainError(errorutil.CodeUpstreamUnavailable, "logistics backend error", http.StatusBadGateway, nil)
	}
	err.Err = cause
	return err
}

// statusOf returns the backend status carried by err, if any.
func statusOf(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// hideForbidden reports inaccessible resources as missing.
func hideForbidden(err error, resource string) error {
	if errorutil.HasCode(err, errorutil.CodeForbidden) {
		return errorutil.NewNotFound(resource, nil)
	}
	return err
}
