// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// CHAT VIEW
// =============================================================================

// View renders the conversation.
func (m *Model) View() string {
	var b strings.Builder

	hole, err := m.st.GetHole(m.holeID)
	title := m.holeID
	if err == nil {
		title = hole.DisplayName()
	}
	b.WriteString(m.theme.HeaderTitle.Render(title))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.sending {
		b.WriteString(m.spin.View() + m.theme.InputPlaceholder.Render(" 倾听中..."))
	} else if m.errLine != "" {
		b.WriteString(m.theme.ErrorTitle.Render(m.errLine))
	}
	b.WriteString("\n")

	b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))

	return b.String()
}

// refreshContent rebuilds the viewport from the stored messages.
func (m *Model) refreshContent() {
	hole, err := m.st.GetHole(m.holeID)
	if err != nil {
		m.viewport.SetContent(m.theme.ErrorMessage.Render("树洞不见了"))
		return
	}

	if len(hole.Messages) == 0 {
		m.viewport.SetContent(m.theme.InputPlaceholder.Render("这里很安静，说点什么吧。"))
		return
	}

	var lines []string
	for _, msg := range hole.Messages {
		lines = append(lines, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// bubbleWidth caps message bubbles to a readable width.
func (m *Model) bubbleWidth() int {
	w := m.width - 12
	if w > 70 {
		w = 70
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderMessage draws one message bubble with its metadata line.
func (m *Model) renderMessage(msg *model.Message) string {
	text := vaultcrypt.DecryptText(msg.EncryptedText, m.password)

	var body string
	if msg.EncryptedImage != "" {
		body = m.theme.ImageBadge.Render("[图片]")
		if text != "" {
			body += " " + text
		}
	} else {
		body = text
	}

	ts := time.UnixMilli(msg.Timestamp).Format("15:04")
	meta := m.theme.Timestamp.Render(ts)

	if msg.Sender == model.SenderUser {
		if msg.Classification != nil {
			meta += " " + m.emotionStyle(msg.Classification.Emotion).Render(msg.Classification.DisplayName())
		}
		bubble := m.theme.UserBubble.MaxWidth(m.bubbleWidth()).Render(body)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, meta)
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
	}

	bubble := m.theme.ListenerBubble.MaxWidth(m.bubbleWidth()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, bubble, meta)
}

// emotionStyle maps an emotion to its tag style.
func (m *Model) emotionStyle(e model.Emotion) lipgloss.Style {
	switch e {
	case model.EmotionSad:
		return m.theme.TagSad
	case model.EmotionHappy:
		return m.theme.TagHappy
	default:
		return m.theme.TagNeutral
	}
}
