// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// HOLE GRID STYLES
	// ==========================================================================

	HoleCell         lipgloss.Style
	HoleCellSelected lipgloss.Style
	HoleNumber       lipgloss.Style
	HoleName         lipgloss.Style
	HoleEmpty        lipgloss.Style
	HoleLockBadge    lipgloss.Style

	// ==========================================================================
	// PIN PAD STYLES
	// ==========================================================================

	PinBox     lipgloss.Style
	PinTitle   lipgloss.Style
	PinHint    lipgloss.Style
	PinDots    lipgloss.Style
	PinError   lipgloss.Style
	PinSuccess lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble     lipgloss.Style
	ListenerBubble lipgloss.Style
	Timestamp      lipgloss.Style
	ImageBadge     lipgloss.Style

	// ==========================================================================
	// EMOTION TAG STYLES
	// ==========================================================================

	TagSad     lipgloss.Style
	TagAngry   lipgloss.Style
	TagAnxious lipgloss.Style
	TagHappy   lipgloss.Style
	TagNeutral lipgloss.Style
	TagTopic   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ModelReady   lipgloss.Style
	ModelLoading lipgloss.Style
	ModelOffline lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// STORAGE GAUGE STYLES
	// ==========================================================================

	GaugeBox    lipgloss.Style
	GaugeFilled lipgloss.Style
	GaugeEmpty  lipgloss.Style
	GaugeWarn   lipgloss.Style
	GaugeDanger lipgloss.Style
	GaugeLabel  lipgloss.Style

	// ==========================================================================
	// HISTORY LIST STYLES
	// ==========================================================================

	HistoryList     lipgloss.Style
	HistoryItem     lipgloss.Style
	HistorySelected lipgloss.Style
	HistoryMeta     lipgloss.Style
	HistoryMatch    lipgloss.Style

	// ==========================================================================
	// OVERLAY AND NOTICE STYLES
	// ==========================================================================

	LockWarning  lipgloss.Style
	NoticeBox    lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	ConfirmBox   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Moss).
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Bark).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Moss)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Hole grid
	t.HoleCell = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HoleCellSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Moss).
		Background(SurfaceDim).
		Bold(true).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HoleNumber = lipgloss.NewStyle().
		Foreground(Bark).
		Bold(true)

	t.HoleName = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.HoleEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.HoleLockBadge = lipgloss.NewStyle().
		Foreground(Amber)

	// PIN pad
	t.PinBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Bark).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.PinTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.PinHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.PinDots = lipgloss.NewStyle().
		Foreground(Moss).
		Bold(true)

	t.PinError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.PinSuccess = lipgloss.NewStyle().
		Foreground(Moss).
		Bold(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.ListenerBubble = lipgloss.NewStyle().
		Foreground(ListenerBubbleFg).
		Background(ListenerBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ListenerBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ImageBadge = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	// Emotion tags
	t.TagSad = lipgloss.NewStyle().Foreground(EmotionSad)
	t.TagAngry = lipgloss.NewStyle().Foreground(EmotionAngry)
	t.TagAnxious = lipgloss.NewStyle().Foreground(EmotionAnxious)
	t.TagHappy = lipgloss.NewStyle().Foreground(EmotionHappy)
	t.TagNeutral = lipgloss.NewStyle().Foreground(EmotionNeutral)
	t.TagTopic = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Moss).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ModelReady = lipgloss.NewStyle().
		Foreground(Moss).
		Bold(true)

	t.ModelLoading = lipgloss.NewStyle().
		Foreground(Amber)

	t.ModelOffline = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Storage gauge
	t.GaugeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.GaugeFilled = lipgloss.NewStyle().
		Foreground(Moss)

	t.GaugeEmpty = lipgloss.NewStyle().
		Foreground(Overlay)

	t.GaugeWarn = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.GaugeDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.GaugeLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// History list
	t.HistoryList = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.HistoryItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.HistorySelected = lipgloss.NewStyle().
		Background(MossDeep).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.HistoryMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.HistoryMatch = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	// Overlays and notices
	t.LockWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Background(AmberDeep).
		Bold(true).
		Padding(0, 1)

	t.NoticeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 2)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Moss).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
