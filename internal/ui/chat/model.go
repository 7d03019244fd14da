// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/treehole-tui/internal/export"
	"github.com/jeranaias/treehole-tui/internal/listener"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// maxImageBytes caps attached image files before encryption.
const maxImageBytes = 2 * 1024 * 1024

// imageMimeTypes maps file extensions to the mime types we accept.
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Model is the conversation view for one unlocked hole.
type Model struct {
	theme    *styles.Theme
	st       *store.Store
	lst      *listener.Listener
	holeID   string
	password string

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	sending bool
	errLine string
	width   int
	height  int
}

// New creates a chat model for an unlocked hole.
func New(theme *styles.Theme, st *store.Store, lst *listener.Listener, holeID, password string) *Model {
	ti := textinput.New()
	ti.Placeholder = "说说你的心事..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		theme:    theme,
		st:       st,
		lst:      lst,
		holeID:   holeID,
		password: password,
		input:    ti,
		viewport: vp,
		spin:     sp,
		width:    80,
		height:   24,
	}

	m.refreshContent()
	m.viewport.GotoBottom()
	return m
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the chat view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return BackMsg{HoleID: m.holeID} }

		case tea.KeyEnter:
			if m.sending {
				return m, nil
			}
			return m, m.submit()

		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return m, nil

		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return m, nil
		}

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case listener.SendCompleteMsg:
		m.sending = false
		if msg.Err != nil {
			m.errLine = "没有存下来，再试一次吧"
			cmds = append(cmds, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
				return errClearMsg{}
			}))
		}
		m.refreshContent()
		m.viewport.GotoBottom()
		return m, tea.Batch(cmds...)

	case errClearMsg:
		m.errLine = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	// Header, input and status rows are drawn outside the viewport.
	vh := height - 5
	if vh < 3 {
		vh = 3
	}
	m.viewport.Height = vh
	m.input.Width = width - 6
	m.refreshContent()
	m.viewport.GotoBottom()
}

// Sending reports whether a reply is in flight.
func (m *Model) Sending() bool {
	return m.sending
}

// submit processes the input line and fires the send pipeline.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	// /name renames the hole without sending anything.
	if name, ok := strings.CutPrefix(text, "/name "); ok {
		m.input.SetValue("")
		if err := m.st.SetName(m.holeID, strings.TrimSpace(name)); err == nil {
			m.st.Persist()
		}
		m.refreshContent()
		return nil
	}

	// /export writes the decrypted conversation next to the snapshot.
	if text == "/export" || strings.HasPrefix(text, "/export ") {
		m.input.SetValue("")
		path, err := m.exportHole(strings.TrimSpace(strings.TrimPrefix(text, "/export")))
		if err != nil {
			m.errLine = "导出失败: " + err.Error()
		} else {
			m.errLine = "已导出到 " + path
		}
		return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return errClearMsg{}
		})
	}

	var image vaultcrypt.ImagePayload
	if path, ok := strings.CutPrefix(text, "/img "); ok {
		payload, err := loadImage(strings.TrimSpace(path))
		if err != nil {
			m.input.SetValue("")
			m.errLine = "图片读不进来: " + err.Error()
			return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
				return errClearMsg{}
			})
		}
		image = payload
		text = ""
	}

	m.input.SetValue("")
	m.sending = true

	return tea.Batch(
		m.spin.Tick,
		m.lst.SendCmd(m.holeID, m.password, text, image),
	)
}

// exportHole writes the decrypted conversation as markdown, or JSON
// when asked with "/export json". Returns the written path.
func (m *Model) exportHole(format string) (string, error) {
	hole, err := m.st.GetHole(m.holeID)
	if err != nil {
		return "", err
	}

	var (
		out []byte
		ext = ".md"
	)
	if format == "json" {
		ext = ".json"
		out, err = export.JSON(hole, m.password)
		if err != nil {
			return "", err
		}
	} else {
		out = []byte(export.Markdown(hole, m.password))
	}

	path := filepath.Join(filepath.Dir(m.st.Path()), m.holeID+ext)
	if err := os.WriteFile(path, out, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// loadImage reads an image file for sending.
func loadImage(path string) (vaultcrypt.ImagePayload, error) {
	mime, ok := imageMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return vaultcrypt.ImagePayload{}, os.ErrInvalid
	}

	info, err := os.Stat(path)
	if err != nil {
		return vaultcrypt.ImagePayload{}, err
	}
	if info.Size() > maxImageBytes {
		return vaultcrypt.ImagePayload{}, os.ErrInvalid
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return vaultcrypt.ImagePayload{}, err
	}

	return vaultcrypt.ImagePayload{Data: data, MimeType: mime}, nil
}
