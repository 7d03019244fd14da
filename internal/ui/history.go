// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/treehole-tui/internal/index"
	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// HISTORY MODEL
// =============================================================================

// emotionFilters cycles through with ctrl+e. Empty means "any".
var emotionFilters = []model.Emotion{"", model.EmotionSad, model.EmotionHappy, model.EmotionNeutral}

// contentFilters cycles through with ctrl+t. Empty means "any".
var contentFilters = append([]model.ContentType{""}, model.ContentTypes()...)

// historyModel is the search view over unlocked holes. It only ever sees
// what is in the in-memory index, so locked holes stay invisible.
// Results are newest first and default to the user's own messages.
type historyModel struct {
	theme *styles.Theme

	input    textinput.Model
	results  []index.Entry
	cursor   int
	emotion  int // index into emotionFilters
	content  int // index into contentFilters
	userOnly bool
	marked   map[string]bool

	status string
	width  int
	height int
}

func newHistoryModel(theme *styles.Theme) *historyModel {
	ti := textinput.New()
	ti.Placeholder = "搜索心事..."
	ti.Prompt = "/ "
	ti.CharLimit = 200

	return &historyModel{
		theme:    theme,
		input:    ti,
		userOnly: true,
		marked:   make(map[string]bool),
		width:    80,
	}
}

// Open focuses the search input when the screen is entered.
func (h *historyModel) Open() tea.Cmd {
	h.input.Focus()
	h.status = ""
	h.marked = make(map[string]bool)
	return textinput.Blink
}

// SetSize resizes the view.
func (h *historyModel) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.input.Width = width - 8
}

// Update handles non-key messages (cursor blink).
func (h *historyModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return cmd
}

// HandleKey handles a key press on the history screen.
func (h *historyModel) HandleKey(msg tea.KeyMsg, st *store.Store, idx *index.MessageIndex) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		h.search(idx)
		return nil

	case tea.KeyUp:
		if h.cursor > 0 {
			h.cursor--
		}
		return nil

	case tea.KeyDown:
		if h.cursor < len(h.results)-1 {
			h.cursor++
		}
		return nil

	case tea.KeyCtrlE:
		h.emotion = (h.emotion + 1) % len(emotionFilters)
		h.search(idx)
		return nil

	case tea.KeyCtrlT:
		h.content = (h.content + 1) % len(contentFilters)
		h.search(idx)
		return nil

	case tea.KeyCtrlU:
		h.userOnly = !h.userOnly
		h.search(idx)
		return nil

	case tea.KeyCtrlD:
		h.deleteMarked(st, idx)
		return nil

	case tea.KeyCtrlA:
		h.markAll()
		return nil

	case tea.KeyCtrlS:
		h.toggleMark()
		return nil
	}

	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return cmd
}

// search runs the current query against the index.
func (h *historyModel) search(idx *index.MessageIndex) {
	if idx == nil {
		h.status = "搜索用不了"
		return
	}

	results, err := idx.Search(index.Query{
		Text:        strings.TrimSpace(h.input.Value()),
		Emotion:     emotionFilters[h.emotion],
		ContentType: contentFilters[h.content],
		UserOnly:    h.userOnly,
	})
	if err != nil {
		h.status = "搜索出错了"
		return
	}

	// Newest first.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	h.results = results
	h.cursor = 0
	h.marked = make(map[string]bool)
	h.status = ""
}

// toggleMark marks or unmarks the message under the cursor.
func (h *historyModel) toggleMark() {
	if h.cursor >= len(h.results) {
		return
	}
	id := h.results[h.cursor].ID
	if h.marked[id] {
		delete(h.marked, id)
	} else {
		h.marked[id] = true
	}
}

// markAll marks every result, or clears all marks if everything is
// already marked.
func (h *historyModel) markAll() {
	if len(h.marked) == len(h.results) && len(h.results) > 0 {
		h.marked = make(map[string]bool)
		return
	}
	for _, e := range h.results {
		h.marked[e.ID] = true
	}
}

// deleteMarked removes the marked messages, or just the one under the
// cursor when nothing is marked. Deletes go to the store, the snapshot,
// and the index together.
func (h *historyModel) deleteMarked(st *store.Store, idx *index.MessageIndex) {
	targets := h.selectedEntries()
	if len(targets) == 0 {
		return
	}

	byHole := make(map[string][]string)
	for _, e := range targets {
		byHole[e.HoleID] = append(byHole[e.HoleID], e.ID)
	}

	deleted := 0
	var removedIDs []string
	for holeID, ids := range byHole {
		n, err := st.DeleteMessages(holeID, ids)
		if err != nil {
			h.status = "没删掉"
			return
		}
		deleted += n
		removedIDs = append(removedIDs, ids...)
	}
	st.Persist()
	if idx != nil {
		idx.Remove(removedIDs)
	}

	gone := make(map[string]bool, len(removedIDs))
	for _, id := range removedIDs {
		gone[id] = true
	}
	kept := h.results[:0]
	for _, e := range h.results {
		if !gone[e.ID] {
			kept = append(kept, e)
		}
	}
	h.results = kept
	h.marked = make(map[string]bool)
	if h.cursor >= len(h.results) && h.cursor > 0 {
		h.cursor = len(h.results) - 1
	}
	h.status = fmt.Sprintf("删掉了 %d 条", deleted)
}

// selectedEntries resolves what a delete applies to.
func (h *historyModel) selectedEntries() []index.Entry {
	if len(h.marked) > 0 {
		var out []index.Entry
		for _, e := range h.results {
			if h.marked[e.ID] {
				out = append(out, e)
			}
		}
		return out
	}
	if h.cursor < len(h.results) {
		return []index.Entry{h.results[h.cursor]}
	}
	return nil
}

// =============================================================================
// HISTORY VIEW
// =============================================================================

// View renders the search screen.
func (h *historyModel) View(st *store.Store) string {
	var b strings.Builder

	b.WriteString(h.theme.HeaderTitle.Render("翻翻心事"))
	b.WriteString("\n")
	b.WriteString(h.input.View())
	b.WriteString("\n")
	b.WriteString(h.filterLine())
	b.WriteString("\n\n")

	if len(h.results) == 0 {
		b.WriteString(h.theme.HistoryMeta.Render("没有找到什么"))
	} else {
		b.WriteString(h.resultList(st))
	}

	if h.status != "" {
		b.WriteString("\n" + h.theme.HistoryMeta.Render(h.status))
	}

	return b.String()
}

// filterLine shows the active filters and the key hints.
func (h *historyModel) filterLine() string {
	emotion := "全部情绪"
	if e := emotionFilters[h.emotion]; e != "" {
		emotion = e.DisplayName()
	}
	content := "全部话题"
	if c := contentFilters[h.content]; c != "" {
		content = c.DisplayName()
	}
	scope := "全部消息"
	if h.userOnly {
		scope = "只看自己"
	}

	line := h.theme.HistoryMeta.Render(emotion+" · "+content+" · "+scope) + "   " +
		h.theme.ShortcutKey.Render("^E") + h.theme.ShortcutDesc.Render(" 情绪 ") +
		h.theme.ShortcutKey.Render("^T") + h.theme.ShortcutDesc.Render(" 话题 ") +
		h.theme.ShortcutKey.Render("^U") + h.theme.ShortcutDesc.Render(" 自己 ") +
		h.theme.ShortcutKey.Render("^S") + h.theme.ShortcutDesc.Render(" 选中 ") +
		h.theme.ShortcutKey.Render("^A") + h.theme.ShortcutDesc.Render(" 全选 ") +
		h.theme.ShortcutKey.Render("^D") + h.theme.ShortcutDesc.Render(" 删除")
	if n := len(h.marked); n > 0 {
		line += "   " + h.theme.HistoryMeta.Render(fmt.Sprintf("选了 %d 条", n))
	}
	return line
}

// resultList renders the hit list around the cursor.
func (h *historyModel) resultList(st *store.Store) string {
	visible := h.height - 8
	if visible < 4 {
		visible = 4
	}

	start := 0
	if h.cursor >= visible {
		start = h.cursor - visible + 1
	}
	end := start + visible
	if end > len(h.results) {
		end = len(h.results)
	}

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, h.renderResult(st, h.results[i], i == h.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderResult draws one hit line.
func (h *historyModel) renderResult(st *store.Store, e index.Entry, selected bool) string {
	holeName := e.HoleID
	if hole, err := st.GetHole(e.HoleID); err == nil {
		holeName = hole.DisplayName()
	}

	ts := time.UnixMilli(e.Timestamp).Format("01-02 15:04")
	who := "我"
	if e.Sender == model.SenderAI {
		who = "树洞"
	}

	mark := "  "
	if h.marked[e.ID] {
		mark = h.theme.ShortcutKey.Render("✓ ")
	}

	meta := h.theme.HistoryMeta.Render(ts + " " + holeName + " " + who)
	text := util.TruncateWidth(e.Text, h.width-30)
	if text == "" {
		text = h.theme.HistoryMeta.Render("[图片]")
	}

	line := mark + meta + " " + text
	if e.Emotion != "" {
		line += " " + h.theme.TagTopic.Render(model.Classification{Emotion: e.Emotion, ContentType: e.ContentType}.DisplayName())
	}

	if selected {
		return h.theme.HistorySelected.Render(line)
	}
	return h.theme.HistoryItem.Render(line)
}
