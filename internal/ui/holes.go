// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/ui/components"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// gridCols is the hole grid width; 12 holes lay out as 4x3.
const gridCols = 4

// =============================================================================
// HOLE GRID KEYS
// =============================================================================

// handleHolesKey handles navigation and actions on the hole grid.
func (m *Model) handleHolesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	holes := m.st.Holes()

	switch msg.String() {
	case "q":
		m.shutdown()
		return m, tea.Quit

	case "up", "k":
		if m.cursor >= gridCols {
			m.cursor -= gridCols
		}
	case "down", "j":
		if m.cursor+gridCols < len(holes) {
			m.cursor += gridCols
		}
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(holes)-1 {
			m.cursor++
		}

	case "enter":
		return m, m.selectHole(holes[m.cursor])

	case "/":
		m.screen = ScreenHistory
		return m, m.hist.Open()

	case "u":
		m.screen = ScreenStorage
		return m, nil

	case "?":
		m.screen = ScreenHelp
		return m, nil

	case "B":
		if m.bak == nil {
			return m, m.showNotice("还没有配置云端备份")
		}
		return m, tea.Batch(m.showNotice("正在备份..."), m.backupCmd())

	case "X":
		return m, m.resetKey(holes[m.cursor])
	}

	if m.cursor >= len(holes) {
		m.cursor = len(holes) - 1
	}
	return m, nil
}

// selectHole opens a hole: straight to chat when its password is cached,
// otherwise through the pin pad.
func (m *Model) selectHole(hole *model.Hole) tea.Cmd {
	if password, ok := m.sess.Password(hole.ID); ok {
		return m.openChat(hole.ID, password)
	}

	m.pin = components.NewPinPad(hole.DisplayName(), hole.IsProvisioned())
	m.pinHoleID = hole.ID
	m.screen = ScreenPin
	return nil
}

// resetKey clears a hole after a double press. There is no password
// recovery; reset is the only way back into a forgotten hole.
func (m *Model) resetKey(hole *model.Hole) tea.Cmd {
	if !hole.IsProvisioned() {
		return nil
	}

	if m.pendingReset != hole.ID {
		m.pendingReset = hole.ID
		return m.showNotice("清空 " + hole.DisplayName() + "？里面的心事找不回来。再按一次 X 确认")
	}

	m.pendingReset = ""
	if err := m.st.Reset(hole.ID); err != nil {
		m.logger.Error("reset failed", "hole", hole.ID, "error", err)
		return m.showNotice("没能清空")
	}
	m.st.Persist()
	m.sess.ClearPassword(hole.ID)
	if m.idx != nil {
		m.idx.DropHole(hole.ID)
	}
	return m.showNotice(hole.DisplayName() + " 清空了")
}

// =============================================================================
// HOLE GRID VIEW
// =============================================================================

// viewHoles renders the 4x3 grid of holes.
func (m *Model) viewHoles() string {
	holes := m.st.Holes()

	var rows []string
	for start := 0; start < len(holes); start += gridCols {
		end := start + gridCols
		if end > len(holes) {
			end = len(holes)
		}

		var cells []string
		for i := start; i < end; i++ {
			cells = append(cells, m.renderHoleCell(holes[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	header := m.theme.Header.Render("树洞")
	sub := m.theme.HeaderSubtitle.Render("十二个树洞，每个都有自己的密码")

	return lipgloss.JoinVertical(lipgloss.Left, header, sub, "", grid)
}

// renderHoleCell draws one cell of the grid.
func (m *Model) renderHoleCell(hole *model.Hole, selected bool) string {
	number := m.theme.HoleNumber.Render(strings.TrimPrefix(hole.ID, "hole-"))

	var label string
	switch {
	case !hole.IsProvisioned():
		label = m.theme.HoleEmpty.Render("空着")
	case m.sess.IsUnlocked(hole.ID):
		label = m.theme.HoleName.Render(util.TruncateRunes(hole.DisplayName(), 8))
	default:
		label = m.theme.HoleLockBadge.Render("🔒 ") +
			m.theme.HoleName.Render(util.TruncateRunes(hole.DisplayName(), 6))
	}

	content := number + " " + label
	if hole.IsProvisioned() {
		content += "\n" + m.theme.HoleEmpty.Render(longDate(hole.CreatedTime()))
	}

	style := m.theme.HoleCell
	if selected {
		style = m.theme.HoleCellSelected
	}
	return style.Width(cellWidth(m.width)).Render(content)
}

// longDate formats a creation date the way the rest of the UI speaks.
func longDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}

// cellWidth fits four cells plus borders into the terminal width.
func cellWidth(total int) int {
	w := total/gridCols - 4
	if w < 10 {
		w = 10
	}
	if w > 24 {
		w = 24
	}
	return w
}
