// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks unlocked holes and idle time. Each successfully
// verified password is cached here so decryption does not reprompt on
// every message; the cache is wiped on lock, on explicit clear, and on
// exit.
type Manager struct {
	mu sync.Mutex

	startTime    time.Time
	lastActivity time.Time

	// passwords maps hole ID to the plaintext password entered this
	// session. Keys exist only for holes the user has unlocked.
	passwords map[string]string

	// Auto-lock configuration
	lockTimeout   time.Duration
	warningBefore time.Duration
	warningShown  bool

	onLock func()
}

// Config holds configuration for the session manager.
type Config struct {
	// LockTimeout is how long the app may sit idle before all holes
	// lock again (default: 5 minutes)
	LockTimeout time.Duration

	// WarningBefore is how long before auto-lock to show a warning
	// (default: 30 seconds)
	WarningBefore time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		LockTimeout:   5 * time.Minute,
		WarningBefore: 30 * time.Second,
	}
}

// NewManager creates a new session manager.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	return &Manager{
		startTime:     now,
		lastActivity:  now,
		passwords:     make(map[string]string),
		lockTimeout:   cfg.LockTimeout,
		warningBefore: cfg.WarningBefore,
	}
}

// Reconfigure swaps the auto-lock timings in place. Cached passwords
// and the activity clock are untouched, so a config reload does not
// relock or unlock anything by itself.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockTimeout = cfg.LockTimeout
	m.warningBefore = cfg.WarningBefore
	m.warningShown = false
}

// =============================================================================
// PASSWORD MAP
// =============================================================================

// SetPassword caches the verified password for a hole.
func (m *Manager) SetPassword(holeID, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords[holeID] = password
}

// Password returns the cached password for a hole, if the hole was
// unlocked this session.
func (m *Manager) Password(holeID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pw, ok := m.passwords[holeID]
	return pw, ok
}

// IsUnlocked reports whether a hole has a cached password.
func (m *Manager) IsUnlocked(holeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.passwords[holeID]
	return ok
}

// ClearPassword drops the cached password for one hole. Called when
// the user leaves the hole.
func (m *Manager) ClearPassword(holeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.passwords, holeID)
}

// ClearAll drops every cached password. Called on lock and on exit.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.passwords {
		delete(m.passwords, k)
	}
}

// UnlockedCount returns how many holes are currently unlocked.
func (m *Manager) UnlockedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.passwords)
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp. Called on every
// keypress.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warningShown = false
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// RemainingTime returns time until auto-lock.
func (m *Manager) RemainingTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := m.lockTimeout - time.Since(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ShouldLock returns true if the idle timeout has elapsed.
func (m *Manager) ShouldLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity) >= m.lockTimeout
}

// SetLockCallback sets the function called when the session locks.
func (m *Manager) SetLockCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLock = fn
}

// Check evaluates idle state, wiping the password cache when the
// timeout has elapsed. Returns false once the session has locked.
func (m *Manager) Check() bool {
	m.mu.Lock()
	locked := time.Since(m.lastActivity) >= m.lockTimeout
	onLock := m.onLock
	if locked {
		for k := range m.passwords {
			delete(m.passwords, k)
		}
	}
	m.mu.Unlock()

	if locked && onLock != nil {
		onLock()
	}
	return !locked
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check idle state.
type TickMsg struct {
	Time time.Time
}

// LockWarningMsg indicates the session is about to lock.
type LockWarningMsg struct {
	Remaining time.Duration
}

// LockMsg indicates the session has locked and the password cache was
// wiped.
type LockMsg struct{}

// TickCmd returns a command that ticks once per second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick and returns appropriate messages.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	m.mu.Lock()
	idle := time.Since(m.lastActivity)
	shouldWarn := !m.warningShown && idle >= m.lockTimeout-m.warningBefore && idle < m.lockTimeout
	if shouldWarn {
		m.warningShown = true
	}
	remaining := m.lockTimeout - idle
	expired := idle >= m.lockTimeout
	if expired {
		for k := range m.passwords {
			delete(m.passwords, k)
		}
	}
	m.mu.Unlock()

	if shouldWarn {
		cmds = append(cmds, func() tea.Msg {
			return LockWarningMsg{Remaining: remaining}
		})
	}
	if expired {
		cmds = append(cmds, func() tea.Msg {
			return LockMsg{}
		})
	}

	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}

// =============================================================================
// REPLY PACING
// =============================================================================

// ReplyDelay is the minimum pause before a reply appears. The pause is
// intentional even when the answer is instant; an immediate response
// reads as mechanical.
const ReplyDelay = 500 * time.Millisecond

// ReplyTickMsg signals that the pacing delay for a pending reply has
// elapsed.
type ReplyTickMsg struct {
	HoleID string
}

// ReplyTickCmd returns a command that fires after the pacing delay.
func ReplyTickCmd(holeID string) tea.Cmd {
	return tea.Tick(ReplyDelay, func(time.Time) tea.Msg {
		return ReplyTickMsg{HoleID: holeID}
	})
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	StartTime     time.Time
	Duration      time.Duration
	IdleTime      time.Duration
	RemainingTime time.Duration
	UnlockedHoles int
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	idle := now.Sub(m.lastActivity)
	remaining := m.lockTimeout - idle
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		StartTime:     m.startTime,
		Duration:      now.Sub(m.startTime),
		IdleTime:      idle,
		RemainingTime: remaining,
		UnlockedHoles: len(m.passwords),
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
