// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/treehole-tui/internal/backup"
	"github.com/jeranaias/treehole-tui/internal/config"
	"github.com/jeranaias/treehole-tui/internal/index"
	"github.com/jeranaias/treehole-tui/internal/listener"
	"github.com/jeranaias/treehole-tui/internal/localmodel"
	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/reply"
	"github.com/jeranaias/treehole-tui/internal/session"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui/chat"
	"github.com/jeranaias/treehole-tui/internal/ui/components"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// ROOT MODEL
// =============================================================================

// noticeDelay is how long transient notices stay visible.
const noticeDelay = 4 * time.Second

// Model is the root bubbletea model. It owns the screens and the shared
// domain state.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	logger *slog.Logger

	st      *store.Store
	sess    *session.Manager
	lst     *listener.Listener
	tracker *localmodel.Tracker
	client  *localmodel.Client
	bak     *backup.Client
	idx     *index.MessageIndex

	screen    Screen
	cursor    int
	pin       *components.PinPad
	pinHoleID string
	chatView  *chat.Model
	hist      *historyModel

	notice       string
	warning      string
	pendingReset string

	width  int
	height int
}

// New wires the root model from loaded configuration and an open store.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Model {
	theme := styles.NewTheme()

	sess := session.NewManager(session.Config{
		LockTimeout:   cfg.LockTimeout(),
		WarningBefore: cfg.LockWarning(),
	})

	selector := reply.NewSelector()

	var (
		tracker *localmodel.Tracker
		client  *localmodel.Client
		source  listener.ReplySource
	)
	if cfg.Reply.Mode == "model" {
		tracker = localmodel.NewTracker()
		client = localmodel.NewClientWithConfig(&localmodel.ClientConfig{
			BaseURL: cfg.Runtime.URL,
			Timeout: cfg.RuntimeTimeout(),
			Model:   cfg.Runtime.Model,
		}, tracker, selector)
		source = client
	} else {
		source = listener.TemplateSource{Selector: selector}
	}

	var bak *backup.Client
	if cfg.BackupConfigured() {
		bak = backup.NewClient(cfg.Backup.Endpoint, cfg.Backup.UserID).
			WithToken(cfg.Backup.Token)
	}

	idx, err := index.NewMessageIndex()
	if err != nil {
		logger.Warn("history index unavailable", "error", err)
		idx = nil
	}

	return &Model{
		theme:   theme,
		cfg:     cfg,
		logger:  logger,
		st:      st,
		sess:    sess,
		lst:     listener.New(st, source, logger),
		tracker: tracker,
		client:  client,
		bak:     bak,
		idx:     idx,
		screen:  ScreenHoles,
		hist:    newHistoryModel(theme),
		width:   80,
		height:  24,
	}
}

// Init starts the session ticker and, in model mode, the runtime probe.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{session.TickCmd()}
	if m.client != nil {
		cmds = append(cmds, m.runtimeCheckCmd())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		if m.chatView != nil {
			m.chatView.SetSize(msg.Width, msg.Height-1)
		}
		m.hist.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case session.TickMsg:
		if m.pin != nil {
			m.pin.ClearExpiredError(time.Now())
		}
		return m, m.sess.HandleTick()

	case session.LockWarningMsg:
		if m.sess.UnlockedCount() > 0 {
			m.warning = "长时间没动静，" + session.FormatDuration(msg.Remaining) + "后树洞会自己锁上"
		}
		return m, nil

	case session.LockMsg:
		return m, m.handleLock()

	case runtimeCheckMsg:
		return m, m.handleRuntimeCheck(msg)

	case warmupTickMsg:
		if m.tracker != nil && m.tracker.State() == localmodel.StateLoading {
			m.tracker.SetProgress(m.tracker.Progress() + 9)
			return m, warmupTickCmd()
		}
		return m, nil

	case warmupDoneMsg:
		return m, m.handleWarmupDone(msg)

	case backupDoneMsg:
		if msg.err != nil {
			m.logger.Warn("backup failed", "error", msg.err)
			return m, m.showNotice("备份没有成功")
		}
		return m, m.showNotice("已备份到云端")

	case noticeClearMsg:
		m.notice = ""
		return m, nil

	case ConfigReloadedMsg:
		return m, m.handleConfigReload(msg.Cfg)

	case chat.BackMsg:
		// Leaving the hole ends its session: the cached password and the
		// decrypted index contents go with it, so the pin pad guards the
		// next entry.
		m.screen = ScreenHoles
		m.chatView = nil
		m.sess.ClearPassword(msg.HoleID)
		if m.idx != nil {
			m.idx.DropHole(msg.HoleID)
		}
		return m, nil

	case listener.SendCompleteMsg:
		m.indexExchange(msg)
		if m.chatView != nil {
			var cmd tea.Cmd
			m.chatView, cmd = m.chatView.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		m.sess.RecordActivity()
		m.warning = ""
		return m.handleKey(msg)
	}

	// Everything else (blinks, spinner ticks) goes to the active screen.
	return m.forward(msg)
}

// forward passes a message to the active screen model.
func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenChat:
		if m.chatView != nil {
			var cmd tea.Cmd
			m.chatView, cmd = m.chatView.Update(msg)
			return m, cmd
		}
	case ScreenHistory:
		return m, m.hist.Update(msg)
	}
	return m, nil
}

// handleKey dispatches a key press by screen.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.shutdown()
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenHoles:
		return m.handleHolesKey(msg)
	case ScreenPin:
		return m.handlePinKey(msg)
	case ScreenChat:
		// The index only holds holes whose session is still open, so
		// search lives inside the hole rather than behind the grid.
		if msg.Type == tea.KeyCtrlF {
			m.screen = ScreenHistory
			return m, m.hist.Open()
		}
		if m.chatView != nil {
			var cmd tea.Cmd
			m.chatView, cmd = m.chatView.Update(msg)
			return m, cmd
		}
	case ScreenHistory:
		if msg.Type == tea.KeyEsc {
			if m.chatView != nil {
				m.screen = ScreenChat
			} else {
				m.screen = ScreenHoles
			}
			return m, nil
		}
		return m, m.hist.HandleKey(msg, m.st, m.idx)
	case ScreenStorage, ScreenHelp:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.screen = ScreenHoles
		default:
			if msg.String() == "q" {
				m.screen = ScreenHoles
			}
		}
		return m, nil
	}
	return m, nil
}

// handlePinKey feeds the pin pad.
func (m *Model) handlePinKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pin == nil {
		m.screen = ScreenHoles
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.pin = nil
		m.screen = ScreenHoles
		return m, nil

	case tea.KeyBackspace:
		m.pin.Backspace()
		return m, nil

	case tea.KeyEnter:
		entered, ok := m.pin.Submit()
		if !ok {
			return m, nil
		}
		return m, m.tryOpen(entered)

	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.pin.TypeRune(r)
		}
		return m, nil
	}
	return m, nil
}

// tryOpen provisions or unlocks the pinned hole with the entered password.
func (m *Model) tryOpen(password string) tea.Cmd {
	holeID := m.pinHoleID
	hole, err := m.st.GetHole(holeID)
	if err != nil {
		m.pin = nil
		m.screen = ScreenHoles
		return nil
	}

	if !hole.IsProvisioned() {
		if err := m.st.Provision(holeID, password); err != nil {
			m.logger.Error("provision failed", "hole", holeID, "error", err)
			m.pin.SetError("没能设置密码")
			return nil
		}
		m.st.Persist()
		return m.openChat(holeID, password)
	}

	ok, err := m.st.Unlock(holeID, password)
	if err != nil {
		m.logger.Error("unlock failed", "hole", holeID, "error", err)
		m.pin.SetError("打不开，再试试")
		return nil
	}
	if !ok {
		m.pin.SetError("密码不对")
		return nil
	}
	return m.openChat(holeID, password)
}

// openChat caches the password, builds the history index for the hole and
// switches to the conversation.
func (m *Model) openChat(holeID, password string) tea.Cmd {
	m.sess.SetPassword(holeID, password)
	m.buildIndex(holeID, password)

	m.pin = nil
	m.chatView = chat.New(m.theme, m.st, m.lst, holeID, password)
	m.chatView.SetSize(m.width, m.height-1)
	m.screen = ScreenChat
	return m.chatView.Init()
}

// handleLock wipes per-hole UI state after the auto-lock fired.
func (m *Model) handleLock() tea.Cmd {
	m.chatView = nil
	m.pin = nil
	if m.idx != nil {
		for _, h := range m.st.Holes() {
			m.idx.DropHole(h.ID)
		}
	}
	if m.screen == ScreenChat || m.screen == ScreenPin || m.screen == ScreenHistory {
		m.screen = ScreenHoles
	}
	return m.showNotice("树洞已经自己锁上了")
}

// shutdown wipes cached passwords and the plaintext index.
func (m *Model) shutdown() {
	m.sess.ClearAll()
	if m.idx != nil {
		m.idx.Close()
	}
}

// showNotice displays a transient line under the grid.
func (m *Model) showNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(noticeDelay, func(time.Time) tea.Msg {
		return noticeClearMsg{}
	})
}

// handleConfigReload applies a reloaded config to the running UI.
// Auto-lock timings and the reply engine switch live; a data dir or
// backup change takes effect on the next start.
func (m *Model) handleConfigReload(cfg *config.Config) tea.Cmd {
	prev := m.cfg
	m.cfg = cfg
	m.sess.Reconfigure(session.Config{
		LockTimeout:   cfg.LockTimeout(),
		WarningBefore: cfg.LockWarning(),
	})

	var cmd tea.Cmd
	if cfg.Reply.Mode != prev.Reply.Mode ||
		cfg.Runtime.URL != prev.Runtime.URL ||
		cfg.Runtime.Model != prev.Runtime.Model {
		selector := reply.NewSelector()
		if cfg.Reply.Mode == "model" {
			m.tracker = localmodel.NewTracker()
			m.client = localmodel.NewClientWithConfig(&localmodel.ClientConfig{
				BaseURL: cfg.Runtime.URL,
				Timeout: cfg.RuntimeTimeout(),
				Model:   cfg.Runtime.Model,
			}, m.tracker, selector)
			m.lst = listener.New(m.st, m.client, m.logger)
			cmd = m.runtimeCheckCmd()
		} else {
			m.tracker = nil
			m.client = nil
			m.lst = listener.New(m.st, listener.TemplateSource{Selector: selector}, m.logger)
		}
	}

	m.logger.Info("config reloaded")
	return tea.Batch(cmd, m.showNotice("配置已重新加载"))
}

// =============================================================================
// LOCAL MODEL WARMUP
// =============================================================================

// runtimeCheckCmd probes the local model runtime.
func (m *Model) runtimeCheckCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.RuntimeTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runtimeCheckMsg{running: client.CheckRunning(ctx) == nil}
	}
}

// handleRuntimeCheck starts the warmup when the runtime is up.
func (m *Model) handleRuntimeCheck(msg runtimeCheckMsg) tea.Cmd {
	if !msg.running {
		m.logger.Info("model runtime not reachable, staying on templates")
		return m.showNotice("本地模型没有运行，先用模板回应")
	}

	m.tracker.StartLoading()
	return tea.Batch(m.warmupCmd(), warmupTickCmd())
}

// warmupCmd issues a throwaway generation to pull the model into memory.
func (m *Model) warmupCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.RuntimeTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := client.Generate(ctx, "你好")
		return warmupDoneMsg{err: err}
	}
}

// handleWarmupDone finishes or abandons the warmup.
func (m *Model) handleWarmupDone(msg warmupDoneMsg) tea.Cmd {
	if msg.err != nil && !m.tracker.IsReady() {
		// Generate refuses until ready; a warmup failure other than that
		// means the runtime dropped away mid-load.
		if m.tracker.State() == localmodel.StateLoading {
			m.logger.Warn("model warmup failed", "error", msg.err)
			m.tracker.ClearCache()
			return m.showNotice("模型没加载起来，先用模板回应")
		}
	}
	m.tracker.MarkReady()
	return nil
}

// warmupTickCmd advances the loading bar while warmup runs.
func warmupTickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return warmupTickMsg{}
	})
}

// =============================================================================
// HISTORY INDEX
// =============================================================================

// buildIndex loads a hole's decrypted messages into the in-memory index.
func (m *Model) buildIndex(holeID, password string) {
	if m.idx == nil {
		return
	}

	hole, err := m.st.GetHole(holeID)
	if err != nil {
		return
	}

	entries := make([]index.Entry, 0, len(hole.Messages))
	for _, msg := range hole.Messages {
		entries = append(entries, entryFor(holeID, password, msg))
	}
	if err := m.idx.BuildHole(holeID, entries); err != nil {
		m.logger.Warn("index build failed", "hole", holeID, "error", err)
	}
}

// indexExchange adds a freshly sent exchange to the index.
func (m *Model) indexExchange(msg listener.SendCompleteMsg) {
	if m.idx == nil || msg.Err != nil || msg.Result == nil {
		return
	}
	password, ok := m.sess.Password(msg.Result.HoleID)
	if !ok {
		return
	}

	m.idx.Add(entryFor(msg.Result.HoleID, password, msg.Result.UserMessage))
	m.idx.Add(entryFor(msg.Result.HoleID, password, msg.Result.AIMessage))
}

// entryFor decrypts one message into an index entry.
func entryFor(holeID, password string, msg *model.Message) index.Entry {
	e := index.Entry{
		ID:        msg.ID,
		HoleID:    holeID,
		Sender:    msg.Sender,
		Timestamp: msg.Timestamp,
		Text:      vaultcrypt.DecryptText(msg.EncryptedText, password),
	}
	if msg.Classification != nil {
		e.Emotion = msg.Classification.Emotion
		e.ContentType = msg.Classification.ContentType
	}
	return e
}

// =============================================================================
// BACKUP
// =============================================================================

// backupCmd uploads the encrypted snapshot.
func (m *Model) backupCmd() tea.Cmd {
	bak := m.bak
	st := m.st
	return func() tea.Msg {
		data, err := st.Snapshot()
		if err != nil {
			return backupDoneMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), backup.DefaultTimeout)
		defer cancel()
		return backupDoneMsg{err: bak.Upload(ctx, data)}
	}
}
