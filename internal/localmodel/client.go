// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package localmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/treehole-tui/internal/reply"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the inference runtime client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeNotReady
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "inference runtime is not running"}
	ErrNotReady   = &ClientError{Type: ErrTypeNotReady, Message: "model is not loaded"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the runtime client.
type ClientConfig struct {
	// BaseURL is the runtime API base URL (default: http://127.0.0.1:11434)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for requests (default: 30s)
	Timeout time.Duration

	// Model to generate replies with (default: "qwen2.5:7b")
	Model string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:11434",
		Timeout: 30 * time.Second,
		Model:   "qwen2.5:7b",
	}
}

// listenerInstruction shapes replies into short, warm, validating
// Chinese sentences with no advice.
const listenerInstruction = "你是一个充满同情心的倾听者，一个心灵树洞。" +
	"你的回答总是安慰、倾听和肯定的。保持你的回答简短、温暖和支持性，大约一到两句话。" +
	"不要提供建议，只需确认对方的感受即可。请用中文回答。"

// =============================================================================
// CLIENT
// =============================================================================

// Client generates replies through a local inference runtime. When
// the readiness tracker is anything but Ready, or the runtime errors,
// Reply falls back to the template selector's blended composition.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	tracker    *Tracker
	fallback   *reply.Selector
}

// NewClient creates a client with default configuration.
func NewClient(tracker *Tracker, fallback *reply.Selector) *Client {
	return NewClientWithConfig(DefaultConfig(), tracker, fallback)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig, tracker *Tracker, fallback *reply.Selector) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Model == "" {
		config.Model = "qwen2.5:7b"
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	if fallback == nil {
		fallback = reply.NewSelector()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		tracker:    tracker,
		fallback:   fallback,
	}
}

// Tracker returns the readiness tracker driving this client.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the runtime is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from runtime: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateRequest is the request body for /api/generate.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the response body for /api/generate.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate asks the runtime for a single non-streamed completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.tracker.IsReady() {
		return "", ErrNotReady
	}

	body, err := json.Marshal(GenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		System: listenerInstruction,
		Stream: false,
	})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "generate failed: " + resp.Status,
		}
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return strings.TrimSpace(result.Response), nil
}

// Reply produces the reply for one user turn. Satisfies the send
// pipeline's reply source contract: it degrades to the local template
// composition instead of failing when the model is unavailable.
func (c *Client) Reply(text string, hasImage bool) (string, error) {
	if !c.tracker.IsReady() {
		return c.fallback.Compose(text, hasImage), nil
	}

	prompt := text
	if hasImage {
		if text != "" {
			prompt = text + "\n(用户还发送了一张图片)"
		} else {
			prompt = "用户发送了一张图片。"
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	out, err := c.Generate(ctx, prompt)
	if err != nil || out == "" {
		return c.fallback.Compose(text, hasImage), nil
	}
	return out, nil
}
