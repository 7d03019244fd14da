// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the treehole TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Moss - Primary accent, the tree hole itself, listener replies
var Moss = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// MossDeep - Darker moss for backgrounds
var MossDeep = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#064E3B"}

// Bark - Secondary accent, hole numbers, frames
var Bark = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#D6A35C"}

// BarkDeep - Darker bark for backgrounds
var BarkDeep = lipgloss.AdaptiveColor{Light: "#78350F", Dark: "#44300F"}

// Sky - Info, user highlights, selections
var Sky = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, wrong password, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Darker rose for backgrounds
var RoseDeep = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#881337"}

// Amber - Warnings, lock countdown, storage pressure
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// AmberDeep - Darker amber for backgrounds
var AmberDeep = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#78350F"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Blue tones
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

// Listener message bubble - Soft green tones
var ListenerBubbleBg = lipgloss.AdaptiveColor{Light: "#ECFDF5", Dark: "#1C3A2E"}
var ListenerBubbleFg = lipgloss.AdaptiveColor{Light: "#065F46", Dark: "#D1FAE5"}
var ListenerBubbleBorder = lipgloss.AdaptiveColor{Light: "#6EE7B7", Dark: "#34D399"}

// =============================================================================
// EMOTION TAG COLORS
// =============================================================================

// EmotionSad - Grief, loneliness, fatigue
var EmotionSad = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

// EmotionAngry - Anger, frustration
var EmotionAngry = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}

// EmotionAnxious - Worry, pressure
var EmotionAnxious = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}

// EmotionHappy - Joy, relief
var EmotionHappy = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"}

// EmotionNeutral - Everything else
var EmotionNeutral = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"}
