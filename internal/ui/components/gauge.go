// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// STORAGE GAUGE COMPONENT
// =============================================================================

// StorageGauge renders the snapshot size against the storage budget.
type StorageGauge struct {
	Usage store.Usage
	Width int
}

// NewStorageGauge creates a gauge for the given usage.
func NewStorageGauge(usage store.Usage) *StorageGauge {
	return &StorageGauge{
		Usage: usage,
		Width: 40,
	}
}

// Render draws the gauge with a usage bar and byte counts.
func (g *StorageGauge) Render(theme *styles.Theme) string {
	barWidth := g.Width
	if barWidth < 10 {
		barWidth = 10
	}

	frac := g.Usage.Fraction
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	// Fill color escalates with usage: green, amber at 70%, red at 90%.
	fillStyle := theme.GaugeFilled
	switch {
	case frac >= 0.9:
		fillStyle = theme.GaugeDanger
	case frac >= 0.7:
		fillStyle = theme.GaugeWarn
	}

	filled := int(frac * float64(barWidth))
	bar := fillStyle.Render(strings.Repeat("█", filled)) +
		theme.GaugeEmpty.Render(strings.Repeat("░", barWidth-filled))

	label := util.FormatBytes(g.Usage.Bytes) + " / " + util.FormatBytes(g.Usage.Budget) +
		" (" + util.FloatToString(frac*100) + "%)"

	lines := []string{
		theme.GaugeLabel.Render("本地空间"),
		bar,
		theme.GaugeLabel.Render(label),
	}

	if g.Usage.NearLimit() {
		lines = append(lines, theme.GaugeDanger.Render("空间快满了，可以删除一些旧的心事"))
	}

	return theme.GaugeBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
