// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/treehole-tui/internal/localmodel"
	"github.com/jeranaias/treehole-tui/internal/session"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the single-line footer showing hole, engine and lock state.
type StatusBar struct {
	HoleTitle string

	// Reply engine state
	ModelBacked   bool
	ModelState    localmodel.State
	ModelProgress int

	// Auto-lock countdown, zero when nothing is unlocked
	LockRemaining time.Duration

	// Key hints, rendered right-aligned
	Shortcuts []Shortcut

	Width int
}

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// engineLabel describes the reply engine for the status bar.
func (s *StatusBar) engineLabel(theme *styles.Theme) string {
	if !s.ModelBacked {
		return theme.ModelOffline.Render("模板回应")
	}
	switch s.ModelState {
	case localmodel.StateReady:
		return theme.ModelReady.Render("本地模型")
	case localmodel.StateLoading:
		return theme.ModelLoading.Render("模型加载中 " + util.IntToString(s.ModelProgress) + "%")
	default:
		return theme.ModelOffline.Render("模板回应")
	}
}

// Render draws the status bar across the given width.
func (s *StatusBar) Render(theme *styles.Theme) string {
	var left []string
	if s.HoleTitle != "" {
		left = append(left, s.HoleTitle)
	}
	left = append(left, s.engineLabel(theme))
	if s.LockRemaining > 0 {
		left = append(left, theme.WarningStyle.Render("锁定 "+session.FormatDuration(s.LockRemaining)))
	}

	var right []string
	for _, sc := range s.Shortcuts {
		right = append(right, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
	}

	leftStr := strings.Join(left, "  ")
	rightStr := strings.Join(right, "  ")

	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return theme.StatusBar.Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}
