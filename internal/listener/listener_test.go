// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package listener

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/reply"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

type fixedSource struct {
	text string
	err  error
}

func (f fixedSource) Reply(string, bool) (string, error) {
	return f.text, f.err
}

func newTestListener(t *testing.T, source ReplySource) (*Listener, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.NewStoreWithPath(filepath.Join(t.TempDir(), "holes.json"), logger)
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	if err := s.Provision("hole-1", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	l := New(s, source, logger)
	l.sleep = func(time.Duration) {} // no pacing in tests
	return l, s
}

func TestSendPersistsTaggedExchange(t *testing.T) {
	l, s := newTestListener(t, fixedSource{text: "我在听。"})

	res, err := l.Send("hole-1", "1234", "今天工作好累，真的难过", vaultcrypt.ImagePayload{})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	hole, _ := s.GetHole("hole-1")
	if len(hole.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(hole.Messages))
	}

	user := hole.Messages[0]
	ai := hole.Messages[1]
	if user.Sender != model.SenderUser || ai.Sender != model.SenderAI {
		t.Error("Messages in wrong order")
	}

	if got := vaultcrypt.DecryptText(user.EncryptedText, "1234"); got != "今天工作好累，真的难过" {
		t.Errorf("User text decrypts to %q", got)
	}
	if got := vaultcrypt.DecryptText(ai.EncryptedText, "1234"); got != "我在听。" {
		t.Errorf("AI text decrypts to %q", got)
	}

	if user.Classification == nil {
		t.Fatal("User message not classified")
	}
	if user.Classification.Emotion != model.EmotionSad {
		t.Errorf("Emotion = %v, want sad", user.Classification.Emotion)
	}
	if user.Classification.ContentType != model.ContentWork {
		t.Errorf("ContentType = %v, want work", user.Classification.ContentType)
	}
	if ai.Classification != nil {
		t.Error("AI message must not carry a classification")
	}

	if res.Classification != *user.Classification {
		t.Error("Result classification differs from persisted tag")
	}
}

func TestSendSubstitutesApologyOnFailure(t *testing.T) {
	l, s := newTestListener(t, fixedSource{err: errors.New("runtime unreachable")})

	if _, err := l.Send("hole-1", "1234", "在吗", vaultcrypt.ImagePayload{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	hole, _ := s.GetHole("hole-1")
	if len(hole.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(hole.Messages))
	}
	ai := hole.Messages[1]
	if got := vaultcrypt.DecryptText(ai.EncryptedText, "1234"); got != reply.ApologyLine {
		t.Errorf("AI text = %q, want apology line", got)
	}
}

func TestSendWithImage(t *testing.T) {
	l, s := newTestListener(t, TemplateSource{Selector: reply.NewSelectorWithSource(func(int) int { return 0 })})

	img := vaultcrypt.ImagePayload{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}
	if _, err := l.Send("hole-1", "1234", "", img); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	hole, _ := s.GetHole("hole-1")
	user := hole.Messages[0]

	payload, ok := vaultcrypt.DecryptImage(user.EncryptedImage, "1234")
	if !ok {
		t.Fatal("User image does not decrypt")
	}
	if payload.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q", payload.MimeType)
	}

	// Image with no text classifies as neutral image.
	if user.Classification == nil {
		t.Fatal("User message not classified")
	}
	if user.Classification.ContentType != model.ContentImage {
		t.Errorf("ContentType = %v, want image", user.Classification.ContentType)
	}
	if user.Classification.Emotion != model.EmotionNeutral {
		t.Errorf("Emotion = %v, want neutral", user.Classification.Emotion)
	}
}

func TestSendRespectsPacing(t *testing.T) {
	l, _ := newTestListener(t, fixedSource{text: "好的。"})

	var slept time.Duration
	l.sleep = func(d time.Duration) { slept = d }

	if _, err := l.Send("hole-1", "1234", "你好", vaultcrypt.ImagePayload{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if slept != l.pacing {
		t.Errorf("Slept %v, want %v", slept, l.pacing)
	}
}

func TestSendUnknownHole(t *testing.T) {
	l, _ := newTestListener(t, fixedSource{text: "x"})
	if _, err := l.Send("hole-99", "1234", "hi", vaultcrypt.ImagePayload{}); !errors.Is(err, store.ErrHoleNotFound) {
		t.Errorf("Send to missing hole = %v, want ErrHoleNotFound", err)
	}
}

func TestTemplateSourceNeverFails(t *testing.T) {
	src := TemplateSource{Selector: reply.NewSelectorWithSource(func(int) int { return 0 })}
	for _, text := range []string{"", "你好", "今天很难过", "随便说点什么"} {
		out, err := src.Reply(text, false)
		if err != nil {
			t.Fatalf("TemplateSource errored: %v", err)
		}
		if out == "" {
			t.Errorf("TemplateSource empty for %q", text)
		}
	}
}
