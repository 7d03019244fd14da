// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func fastClient(baseURL string) *Client {
	return NewClient(baseURL, "user-42").
		WithRateLimit(rate.Inf, 1).
		WithMaxRetries(3)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	var stored atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/snapshots/user-42" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			stored.Store(body)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			b, _ := stored.Load().([]byte)
			if b == nil {
				http.NotFound(w, r)
				return
			}
			w.Write(b)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	c := fastClient(server.URL)
	snapshot := []byte(`{"version":1,"holes":[]}`)

	if err := c.Upload(context.Background(), snapshot); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	got, err := c.Download(context.Background())
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(got, snapshot) {
		t.Errorf("Download = %q, want %q", got, snapshot)
	}
}

func TestDownloadMissingSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := fastClient(server.URL)
	if _, err := c.Download(context.Background()); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Download = %v, want ErrSnapshotNotFound", err)
	}
}

func TestAuthFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := fastClient(server.URL)
	if err := c.Upload(context.Background(), []byte("{}")); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Upload = %v, want ErrAuthFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Auth failure retried %d times", calls.Load())
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := fastClient(server.URL)
	start := time.Now()
	if err := c.Upload(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Upload failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
	// Two backoff waits: 500ms + 1s.
	if time.Since(start) < time.Second {
		t.Error("Retries did not back off")
	}
}

func TestRetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := fastClient(server.URL).WithMaxRetries(2)
	err := c.Upload(context.Background(), []byte("{}"))
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}
	var bErr *BackupError
	if !errors.As(err, &bErr) || bErr.Status != http.StatusInternalServerError {
		t.Errorf("Wrapped error = %v", err)
	}
}

func TestUploadRejectsOversizedSnapshot(t *testing.T) {
	c := fastClient("http://127.0.0.1:1")
	big := make([]byte, MaxSnapshotSize+1)
	if err := c.Upload(context.Background(), big); !errors.Is(err, ErrSnapshotTooLarge) {
		t.Errorf("Upload = %v, want ErrSnapshotTooLarge", err)
	}
}

func TestDownloadRejectsOversizedSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), MaxSnapshotSize+1))
	}))
	defer server.Close()

	c := fastClient(server.URL)
	if _, err := c.Download(context.Background()); !errors.Is(err, ErrSnapshotTooLarge) {
		t.Errorf("Download = %v, want ErrSnapshotTooLarge", err)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient("", "")
	if err := c.Upload(context.Background(), []byte("{}")); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Upload = %v, want ErrNotConfigured", err)
	}
	if _, err := c.Download(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Download = %v, want ErrNotConfigured", err)
	}
}

func TestBearerTokenHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := fastClient(server.URL).WithToken("secret")
	if err := c.Upload(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
}
