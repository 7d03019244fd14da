// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for treehole.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/treehole-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdExport
	CmdBackup
	CmdRestore
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed command-line arguments.
type Args struct {
	// Export
	Hole   string
	Format string
	Output string

	// Shared
	JSON bool
}

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) into a command and
// its arguments. Anything unrecognized falls through to the TUI.
func ParseArgs(argv []string) (Command, Args) {
	args := Args{Format: "markdown"}

	if len(argv) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	switch argv[0] {
	case "export":
		cmd = CmdExport
	case "backup":
		cmd = CmdBackup
	case "restore":
		cmd = CmdRestore
	case "config":
		cmd = CmdConfig
	case "version", "--version", "-v":
		cmd = CmdVersion
	case "help", "--help", "-h":
		cmd = CmdHelp
	default:
		return CmdTUI, args
	}

	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--hole":
			if i+1 < len(rest) {
				i++
				args.Hole = rest[i]
			}
		case "--format":
			if i+1 < len(rest) {
				i++
				args.Format = strings.ToLower(rest[i])
			}
		case "--out", "-o":
			if i+1 < len(rest) {
				i++
				args.Output = rest[i]
			}
		case "--json":
			args.JSON = true
		}
	}

	return cmd, args
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf(`{"version":%q,"commit":%q,"built":%q,"go":%q}`+"\n",
			Version, GitCommit, BuildDate, runtime.Version())
		return
	}
	fmt.Printf("treehole %s (%s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
}

// HandleConfig prints the config file path, writing defaults first if
// no config file exists yet.
func HandleConfig() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.Default()
		if err := cfg.SaveTOML(path); err != nil {
			return err
		}
		fmt.Printf("Wrote defaults to %s\n", path)
		return nil
	}
	fmt.Println(path)
	return nil
}

// HandleHelp prints usage information.
func HandleHelp() {
	fmt.Print(`treehole - a private place for what's on your mind

Usage:
  treehole                 Start the TUI
  treehole export          Export one hole (prompts for its password)
      --hole <id>          Hole to export, e.g. hole-3 (required)
      --format md|json     Output format (default: markdown)
      --out <file>         Write to file instead of stdout
  treehole backup          Upload the encrypted snapshot to the configured service
  treehole restore         Download the snapshot and replace the local one
  treehole config          Print the config path, writing defaults if missing
  treehole version         Print version information

Environment:
  TREEHOLE_DATA_DIR, TREEHOLE_REPLY_MODE, TREEHOLE_RUNTIME_URL,
  TREEHOLE_MODEL, TREEHOLE_BACKUP_ENDPOINT, TREEHOLE_BACKUP_USER,
  TREEHOLE_BACKUP_TOKEN, TREEHOLE_LOCK_TIMEOUT_SECS, TREEHOLE_THEME,
  TREEHOLE_LOG_LEVEL
`)
}
