// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/jeranaias/treehole-tui/internal/config"
	"github.com/jeranaias/treehole-tui/internal/export"
	"github.com/jeranaias/treehole-tui/internal/store"
)

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// HandleExport decrypts one hole and writes it as markdown or JSON.
func HandleExport(args Args) error {
	if args.Hole == "" {
		return fmt.Errorf("--hole is required (e.g. --hole hole-3)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewStoreWithPath(filepath.Join(dataDir, store.SnapshotFileName), logger)
	if err != nil {
		return err
	}

	hole, err := st.GetHole(args.Hole)
	if err != nil {
		return err
	}
	if !hole.IsProvisioned() {
		return fmt.Errorf("%s has never been used", args.Hole)
	}

	password, err := promptPassword(hole.DisplayName())
	if err != nil {
		return err
	}
	ok, err := st.Unlock(args.Hole, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wrong password")
	}

	var out []byte
	switch args.Format {
	case "json":
		out, err = export.JSON(hole, password)
	case "markdown", "md", "":
		out = []byte(export.Markdown(hole, password))
	default:
		return fmt.Errorf("unknown format %q, use markdown or json", args.Format)
	}
	if err != nil {
		return err
	}

	if args.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	// Exports are plaintext; keep them owner-only like the snapshot.
	return os.WriteFile(args.Output, out, 0600)
}

// promptPassword reads the hole password without echo.
func promptPassword(holeName string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", holeName)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
