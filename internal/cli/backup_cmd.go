// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jeranaias/treehole-tui/internal/backup"
	"github.com/jeranaias/treehole-tui/internal/config"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// BACKUP / RESTORE COMMANDS
// =============================================================================

// HandleBackup uploads the local snapshot to the configured backup service.
// The snapshot is already encrypted at rest, so it goes up as-is.
func HandleBackup() error {
	cfg, bak, err := backupClient()
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

	data, err := st.Snapshot()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), backup.DefaultTimeout)
	defer cancel()
	if err := bak.Upload(ctx, data); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %s to %s\n", util.FormatBytes(int64(len(data))), cfg.Backup.Endpoint)
	return nil
}

// HandleRestore downloads the remote snapshot and replaces the local one.
// The previous snapshot is kept next to it with a .bak suffix.
func HandleRestore() error {
	cfg, bak, err := backupClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), backup.DefaultTimeout)
	defer cancel()
	data, err := bak.Download(ctx)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dataDir, store.SnapshotFileName)

	if prev, err := os.ReadFile(path); err == nil {
		if err := util.AtomicWriteFile(path+".bak", prev, 0600); err != nil {
			return err
		}
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return err
	}

	fmt.Printf("Restored %s to %s\n", util.FormatBytes(int64(len(data))), path)
	return nil
}

// backupClient loads the config and builds the backup client from it.
func backupClient() (*config.Config, *backup.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.BackupConfigured() {
		return nil, nil, fmt.Errorf("no backup service configured, set [backup] endpoint and user_id in the config file")
	}
	bak := backup.NewClient(cfg.Backup.Endpoint, cfg.Backup.UserID)
	if cfg.Backup.Token != "" {
		bak = bak.WithToken(cfg.Backup.Token)
	}
	return cfg, bak, nil
}
