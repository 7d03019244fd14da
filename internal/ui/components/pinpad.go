// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the treehole TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
)

// =============================================================================
// PIN PAD COMPONENT
// =============================================================================

// PinMode is the current phase of the pin pad.
type PinMode int

const (
	// PinModeUnlock asks for the password of a provisioned hole.
	PinModeUnlock PinMode = iota
	// PinModeSetup asks for a new password on first use.
	PinModeSetup
	// PinModeConfirm asks the setup password to be typed again.
	PinModeConfirm
)

// ErrorResetDelay is how long an error message stays before the pad clears.
const ErrorResetDelay = 1400 * time.Millisecond

// MaxPasswordLen caps the password length.
const MaxPasswordLen = 32

// PinPad is the masked password entry component. The parent model feeds it
// key presses and drives the error reset with a timer.
type PinPad struct {
	Mode      PinMode
	HoleTitle string

	value   string
	first   string // setup password awaiting confirmation
	errMsg  string
	errorAt time.Time
}

// NewPinPad creates a pin pad for the given hole title. provisioned selects
// between unlock and first-time setup.
func NewPinPad(holeTitle string, provisioned bool) *PinPad {
	mode := PinModeSetup
	if provisioned {
		mode = PinModeUnlock
	}
	return &PinPad{
		Mode:      mode,
		HoleTitle: holeTitle,
	}
}

// TypeRune appends a printable rune to the entry.
func (p *PinPad) TypeRune(r rune) {
	if p.errMsg != "" {
		return
	}
	if len([]rune(p.value)) >= MaxPasswordLen {
		return
	}
	p.value += string(r)
}

// Backspace removes the last rune.
func (p *PinPad) Backspace() {
	if p.errMsg != "" {
		return
	}
	runes := []rune(p.value)
	if len(runes) > 0 {
		p.value = string(runes[:len(runes)-1])
	}
}

// Value returns the current entry.
func (p *PinPad) Value() string {
	return p.value
}

// Submit processes the current entry. For setup it moves to the confirm
// phase and returns empty; a confirmed match or an unlock entry is returned
// to the caller. A confirm mismatch restarts setup from the beginning.
func (p *PinPad) Submit() (string, bool) {
	if p.errMsg != "" || p.value == "" {
		return "", false
	}

	switch p.Mode {
	case PinModeSetup:
		p.first = p.value
		p.value = ""
		p.Mode = PinModeConfirm
		return "", false

	case PinModeConfirm:
		if p.value != p.first {
			p.first = ""
			p.Mode = PinModeSetup
			p.SetError("两次输入不一致，请重新设置")
			return "", false
		}
		entered := p.value
		p.value = ""
		p.first = ""
		return entered, true

	default:
		entered := p.value
		p.value = ""
		return entered, true
	}
}

// SetError shows an error message and freezes input.
func (p *PinPad) SetError(msg string) {
	p.errMsg = msg
	p.errorAt = time.Now()
	p.value = ""
}

// HasError reports whether an error message is showing.
func (p *PinPad) HasError() bool {
	return p.errMsg != ""
}

// ClearExpiredError clears the error once the reset delay has passed.
// Returns true if the error was cleared.
func (p *PinPad) ClearExpiredError(now time.Time) bool {
	if p.errMsg == "" || now.Sub(p.errorAt) < ErrorResetDelay {
		return false
	}
	p.errMsg = ""
	return true
}

// Render draws the pin pad centered in the given width.
func (p *PinPad) Render(theme *styles.Theme, width int) string {
	var title, hint string
	switch p.Mode {
	case PinModeSetup:
		title = "为 " + p.HoleTitle + " 设置密码"
		hint = "第一次进入，请设置一个密码"
	case PinModeConfirm:
		title = "请再次输入密码"
		hint = "确认刚才设置的密码"
	default:
		title = "打开 " + p.HoleTitle
		hint = "输入密码解锁"
	}

	var body string
	if p.errMsg != "" {
		body = theme.PinError.Render(p.errMsg)
	} else {
		dots := strings.Repeat("●", len([]rune(p.value)))
		if dots == "" {
			dots = theme.PinHint.Render("········")
		} else {
			dots = theme.PinDots.Render(dots)
		}
		body = dots
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.PinTitle.Render(title),
		"",
		body,
		"",
		theme.PinHint.Render(hint),
	)

	box := theme.PinBox.Render(content)
	if width > lipgloss.Width(box) {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	return box
}
