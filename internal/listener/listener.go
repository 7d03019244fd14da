// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package listener

import (
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/treehole-tui/internal/classify"
	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/reply"
	"github.com/jeranaias/treehole-tui/internal/session"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// LISTENER
// =============================================================================

// ReplySource produces the listener's reply text. The template
// selector never fails; a model-backed source may.
type ReplySource interface {
	Reply(text string, hasImage bool) (string, error)
}

// Listener orchestrates a send from user keypress to persisted,
// tagged exchange.
type Listener struct {
	store  *store.Store
	source ReplySource
	logger *slog.Logger

	// pacing is the minimum pause before the reply lands.
	pacing time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// New creates a listener over a store and a reply source.
func New(s *store.Store, source ReplySource, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		store:  s,
		source: source,
		logger: logger,
		pacing: session.ReplyDelay,
		sleep:  time.Sleep,
	}
}

// Result is the outcome of one completed send.
type Result struct {
	HoleID         string
	UserMessage    *model.Message
	AIMessage      *model.Message
	Classification model.Classification
}

// Send runs the full pipeline and blocks until the exchange is
// persisted. The user message is written to disk before classification
// or reply generation start, so a crash mid-pipeline loses only the
// tag and the reply, never the user's words.
func (l *Listener) Send(holeID, password, text string, image vaultcrypt.ImagePayload) (*Result, error) {
	hasImage := !image.IsZero()

	userMsg := model.NewMessage(model.SenderUser)
	ct, err := vaultcrypt.EncryptText(text, password)
	if err != nil {
		return nil, err
	}
	userMsg.EncryptedText = ct
	if hasImage {
		ctImg, err := vaultcrypt.EncryptImage(image, password)
		if err != nil {
			return nil, err
		}
		userMsg.EncryptedImage = ctImg
	}

	if err := l.store.AppendMessage(holeID, userMsg); err != nil {
		return nil, err
	}
	if err := l.store.Persist(); err != nil {
		return nil, err
	}

	l.sleep(l.pacing)

	// Classification and reply generation share only the immutable
	// inputs, so they run concurrently and join before the merge.
	var (
		wg       sync.WaitGroup
		tag      model.Classification
		replyTxt string
		replyErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tag = classify.Classify(text, hasImage)
	}()
	go func() {
		defer wg.Done()
		replyTxt, replyErr = l.source.Reply(text, hasImage)
	}()
	wg.Wait()

	if replyErr != nil || replyTxt == "" {
		l.logger.Warn("reply generation failed, substituting apology", "hole", holeID, "error", replyErr)
		replyTxt = reply.ApologyLine
	}

	if err := l.store.UpdateMessageClassification(holeID, userMsg.ID, tag); err != nil {
		// The tag is decoration over the user's words; a failed
		// attach is logged and the reply still lands.
		l.logger.Warn("classification attach failed", "hole", holeID, "message", userMsg.ID, "error", err)
	}

	aiMsg := model.NewMessage(model.SenderAI)
	aiCt, err := vaultcrypt.EncryptText(replyTxt, password)
	if err != nil {
		return nil, err
	}
	aiMsg.EncryptedText = aiCt

	if err := l.store.AppendMessage(holeID, aiMsg); err != nil {
		return nil, err
	}
	if err := l.store.Persist(); err != nil {
		return nil, err
	}

	return &Result{
		HoleID:         holeID,
		UserMessage:    userMsg,
		AIMessage:      aiMsg,
		Classification: tag,
	}, nil
}

// =============================================================================
// TEMPLATE SOURCE
// =============================================================================

// TemplateSource adapts the template selector to the ReplySource
// interface. It never returns an error.
type TemplateSource struct {
	Selector *reply.Selector
}

// Reply implements ReplySource.
func (t TemplateSource) Reply(text string, hasImage bool) (string, error) {
	return t.Selector.Reply(text, hasImage, reply.ModeTemplate), nil
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// SendCompleteMsg is delivered when the pipeline finishes.
type SendCompleteMsg struct {
	Result *Result
	Err    error
}

// SendCmd runs Send off the UI goroutine and delivers the outcome as a
// message.
func (l *Listener) SendCmd(holeID, password, text string, image vaultcrypt.ImagePayload) tea.Cmd {
	return func() tea.Msg {
		res, err := l.Send(holeID, password, text, image)
		return SendCompleteMsg{Result: res, Err: err}
	}
}
