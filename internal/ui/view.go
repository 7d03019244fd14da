// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/treehole-tui/internal/ui/components"
)

// =============================================================================
// ROOT VIEW
// =============================================================================

// View renders the active screen with the shared footer.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case ScreenPin:
		if m.pin != nil {
			body = m.pin.Render(m.theme, m.width)
		}
	case ScreenChat:
		if m.chatView != nil {
			body = m.chatView.View()
		}
	case ScreenHistory:
		body = m.hist.View(m.st)
	case ScreenStorage:
		body = m.viewStorage()
	case ScreenHelp:
		body = m.viewHelp()
	default:
		body = m.viewHoles()
	}

	var footer []string
	if m.warning != "" {
		footer = append(footer, m.theme.LockWarning.Render(m.warning))
	}
	if m.notice != "" {
		footer = append(footer, m.theme.NoticeBox.Render(m.notice))
	}
	footer = append(footer, m.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{body}, footer...)...)
}

// statusBar builds the footer for the active screen.
func (m *Model) statusBar() string {
	bar := components.StatusBar{
		Width:       m.width,
		ModelBacked: m.client != nil,
	}
	if m.tracker != nil {
		bar.ModelState = m.tracker.State()
		bar.ModelProgress = m.tracker.Progress()
	}
	if m.sess.UnlockedCount() > 0 {
		bar.LockRemaining = m.sess.RemainingTime()
	}

	switch m.screen {
	case ScreenChat:
		if hole, err := m.st.GetHole(m.currentHoleID()); err == nil {
			bar.HoleTitle = hole.DisplayName()
		}
		bar.Shortcuts = []components.Shortcut{
			{Key: "esc", Desc: "返回"},
			{Key: "/img", Desc: "发图"},
			{Key: "/name", Desc: "改名"},
			{Key: "/export", Desc: "导出"},
			{Key: "^F", Desc: "搜索"},
		}
	case ScreenHistory:
		bar.Shortcuts = []components.Shortcut{
			{Key: "enter", Desc: "搜索"},
			{Key: "esc", Desc: "返回"},
		}
	default:
		bar.Shortcuts = []components.Shortcut{
			{Key: "enter", Desc: "打开"},
			{Key: "/", Desc: "搜索"},
			{Key: "u", Desc: "空间"},
			{Key: "?", Desc: "帮助"},
			{Key: "q", Desc: "退出"},
		}
	}

	return bar.Render(m.theme)
}

// currentHoleID returns the hole shown in the chat view, if any.
func (m *Model) currentHoleID() string {
	if m.screen == ScreenPin {
		return m.pinHoleID
	}
	// The chat view owns the ID; fall back to the grid selection.
	holes := m.st.Holes()
	if m.cursor < len(holes) {
		return holes[m.cursor].ID
	}
	return ""
}

// =============================================================================
// STORAGE SCREEN
// =============================================================================

// viewStorage renders the storage gauge.
func (m *Model) viewStorage() string {
	usage, err := m.st.Usage()
	if err != nil {
		return m.theme.ErrorMessage.Render("算不出来占了多少空间")
	}

	gauge := components.NewStorageGauge(usage)
	gauge.Width = m.width - 12
	if gauge.Width > 60 {
		gauge.Width = 60
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.HeaderTitle.Render("空间"),
		"",
		gauge.Render(m.theme),
	)
}

// =============================================================================
// HELP SCREEN
// =============================================================================

const helpMarkdown = `# 树洞

十二个树洞，每个都有自己的密码。写进去的心事只留在这台机器上，
除了你没人看得到。

## 树洞格子

- 方向键 / hjkl 移动，回车打开
- 没用过的树洞第一次打开时设置密码
- ` + "`X`" + ` 按两次清空一个树洞（密码忘了只能这样）
- ` + "`B`" + ` 备份到云端（备份内容都是加密过的）

## 洞里

- 直接打字，回车倾诉
- ` + "`/img 路径`" + ` 发一张图片
- ` + "`/name 名字`" + ` 给树洞起个名字
- ` + "`/export`" + ` 导出这个树洞（markdown，` + "`/export json`" + ` 导出 JSON）
- ` + "`^F`" + ` 搜索心事（^E 情绪、^T 话题、^S 选中、^A 全选、^D 删除）
- esc 回到格子，洞会重新锁上

## 其他

- ` + "`/`" + ` 搜索（只能翻到还开着的树洞）
- ` + "`u`" + ` 看看本地空间用了多少
- 放着不动一段时间，树洞会自己锁上
`

// viewHelp renders the help markdown through glamour.
func (m *Model) viewHelp() string {
	width := m.width - 4
	if width > 80 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}

	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
