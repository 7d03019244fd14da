// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"trace", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "treehole.log")

	logger, closer, err := Open(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	logger.Info("started", "holes", 12)
	logger.Debug("filtered out")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "msg=started") || !strings.Contains(out, "holes=12") {
		t.Errorf("log output missing entry: %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Error("debug entry logged at info level")
	}
}

func TestOpenFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not enforced on windows")
	}

	path := filepath.Join(t.TempDir(), "treehole.log")
	_, closer, err := Open(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closer.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log file permissions = %o, want 0600", perm)
	}
}

func TestOpenFailureStillReturnsLogger(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Parent "directory" is a regular file, so the open fails.
	logger, closer, err := Open(filepath.Join(blocker, "treehole.log"), slog.LevelInfo)
	if err == nil {
		t.Fatal("expected error opening log under a file")
	}
	if logger == nil {
		t.Fatal("expected usable fallback logger")
	}
	logger.Info("goes nowhere")
	closer.Close()
}
