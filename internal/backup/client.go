// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the backup endpoint.
const (
	// DefaultTimeout is the default timeout for backup requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxSnapshotSize is the maximum allowed snapshot body size.
	// Matches the local storage budget with headroom; anything bigger
	// is not a snapshot this app produced.
	MaxSnapshotSize = 10 * 1024 * 1024 // 10MB limit
)

// sharedHTTPClient pools connections for all backup requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// Error variables for common backup errors.
var (
	// ErrNotConfigured indicates no backup endpoint is set.
	ErrNotConfigured = errors.New("backup endpoint not configured")

	// ErrAuthFailed indicates the user id or token was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrSnapshotNotFound indicates no snapshot exists for the user id.
	ErrSnapshotNotFound = errors.New("no remote snapshot")

	// ErrSnapshotTooLarge indicates the remote snapshot exceeds the size limit.
	ErrSnapshotTooLarge = errors.New("remote snapshot too large")
)

// BackupError represents an error response from the backup endpoint.
type BackupError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *BackupError) Error() string {
	return fmt.Sprintf("backup error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the backup endpoint. Requests pass through a
// client-side rate limiter so a reconnect loop cannot hammer the
// server, and transient failures retry with exponential backoff.
type Client struct {
	baseURL    string
	userID     string
	token      string
	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
}

// NewClient creates a backup client for the given endpoint and user.
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userID:     strings.TrimSpace(userID),
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
		// One request per 2 seconds sustained, short burst allowed.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// WithToken sets a bearer token for the endpoint.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit overrides the client-side rate limit.
func (c *Client) WithRateLimit(r rate.Limit, burst int) *Client {
	c.limiter = rate.NewLimiter(r, burst)
	return c
}

// WithHTTPClient swaps the HTTP client, for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// IsConfigured returns true if an endpoint and user id are set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.userID != ""
}

// snapshotURL is the per-user snapshot resource.
func (c *Client) snapshotURL() string {
	return c.baseURL + "/v1/snapshots/" + url.PathEscape(c.userID)
}

// setHeaders sets the required headers for backup requests. Each
// attempt gets a fresh request ID so server logs can tell a retry
// from a new operation.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "treehole/0.1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// =============================================================================
// UPLOAD / DOWNLOAD
// =============================================================================

// Upload pushes the serialized snapshot. The server keeps the latest
// version only; whoever uploads last wins.
func (c *Client) Upload(ctx context.Context, snapshot []byte) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if len(snapshot) > MaxSnapshotSize {
		return ErrSnapshotTooLarge
	}

	_, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.snapshotURL(), bytes.NewReader(snapshot))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	}, nil)
	return err
}

// Download fetches the latest remote snapshot for this user.
func (c *Client) Download(ctx context.Context) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var body []byte
	_, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(), nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	}, func(resp *http.Response) error {
		b, err := readBody(resp)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Delete removes the remote snapshot for this user.
func (c *Client) Delete(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	_, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.snapshotURL(), nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	}, nil)
	return err
}

// =============================================================================
// RETRY LOGIC
// =============================================================================

// doWithRetry runs a request through the rate limiter with retries on
// transient failures. Requests are rebuilt per attempt so the body is
// re-readable. onSuccess, when set, consumes the 2xx response body
// while the connection is open.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error), onSuccess func(*http.Response) error) (int, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		req, err := build()
		if err != nil {
			return 0, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return 0, err
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			status := resp.StatusCode
			if onSuccess != nil {
				err = onSuccess(resp)
			}
			resp.Body.Close()
			return status, err
		}

		err = c.handleErrorResponse(resp)
		resp.Body.Close()
		if !isRetryable(err) {
			return resp.StatusCode, err
		}
		lastErr = err
	}

	return 0, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readBody reads a response body with the size limit applied.
func readBody(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxSnapshotSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrSnapshotNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &BackupError{
			Message: strings.TrimSpace(string(body)),
			Status:  resp.StatusCode,
		}
	}
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var bErr *BackupError
	if errors.As(err, &bErr) {
		return bErr.Status >= 500 && bErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
