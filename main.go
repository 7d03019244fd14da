// treehole TUI - a private place for what's on your mind.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/treehole-tui/internal/cli"
	"github.com/jeranaias/treehole-tui/internal/config"
	"github.com/jeranaias/treehole-tui/internal/logging"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdExport:
		exitOn(cli.HandleExport(args))
	case cli.CmdBackup:
		exitOn(cli.HandleBackup())
	case cli.CmdRestore:
		exitOn(cli.HandleRestore())
	case cli.CmdConfig:
		exitOn(cli.HandleConfig())
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI loads the config, opens the store, and runs the full-screen UI.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file only.
	logPath, err := cfg.LogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, logCloser, err := logging.Open(logPath, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging unavailable: %v\n", err)
	}
	defer logCloser.Close()

	dataDir, err := cfg.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.NewStoreWithPath(filepath.Join(dataDir, store.SnapshotFileName), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	model := ui.New(cfg, st, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Live config reload: edits to the config file reach the running UI.
	if cfgPath, err := config.ConfigPathTOML(); err == nil {
		watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
			program.Send(ui.ConfigReloadedMsg{Cfg: next})
		}, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else if err := watcher.Watch(); err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	logger.Info("starting", "version", Version, "dataDir", dataDir)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
