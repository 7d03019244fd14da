// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a decrypted hole as markdown or JSON. Used by
// the export CLI and the in-chat export command. Output is plaintext;
// callers decide where it is allowed to go.
package export

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown renders the hole's decrypted conversation as Markdown.
func Markdown(hole *model.Hole, password string) string {
	var sb strings.Builder
	sb.WriteString("# " + hole.DisplayName() + "\n\n")
	if hole.CreatedAt > 0 {
		sb.WriteString("Created: " + hole.CreatedTime().Format(time.RFC3339) + "\n\n")
	}
	sb.WriteString("---\n\n")

	for _, msg := range hole.Messages {
		who := "**我**"
		if msg.Sender == model.SenderAI {
			who = "**树洞**"
		}
		ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04")
		sb.WriteString(who + " (" + ts + "):\n\n")

		if msg.EncryptedImage != "" {
			sb.WriteString("*[图片]*\n\n")
		}
		if text := vaultcrypt.DecryptText(msg.EncryptedText, password); text != "" {
			sb.WriteString(text + "\n\n")
		}
		if msg.Classification != nil {
			sb.WriteString("_" + msg.Classification.DisplayName() + "_\n\n")
		}
		sb.WriteString("---\n\n")
	}

	return sb.String()
}

// =============================================================================
// JSON
// =============================================================================

// ExportedMessage is one decrypted message in a JSON export.
type ExportedMessage struct {
	Sender      string `json:"sender"`
	Timestamp   string `json:"timestamp"`
	Text        string `json:"text,omitempty"`
	HasImage    bool   `json:"hasImage,omitempty"`
	Emotion     string `json:"emotion,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// ExportedHole is the JSON export envelope.
type ExportedHole struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	ExportedAt string            `json:"exportedAt"`
	Messages   []ExportedMessage `json:"messages"`
}

// JSON renders the hole's decrypted conversation as pretty-printed JSON.
func JSON(hole *model.Hole, password string) ([]byte, error) {
	out := ExportedHole{
		ID:         hole.ID,
		Name:       hole.Name,
		ExportedAt: time.Now().Format(time.RFC3339),
		Messages:   make([]ExportedMessage, 0, len(hole.Messages)),
	}

	for _, msg := range hole.Messages {
		m := ExportedMessage{
			Sender:    string(msg.Sender),
			Timestamp: time.UnixMilli(msg.Timestamp).Format(time.RFC3339),
			Text:      vaultcrypt.DecryptText(msg.EncryptedText, password),
			HasImage:  msg.EncryptedImage != "",
		}
		if msg.Classification != nil {
			m.Emotion = string(msg.Classification.Emotion)
			m.ContentType = string(msg.Classification.ContentType)
		}
		out.Messages = append(out.Messages, m)
	}

	return json.MarshalIndent(out, "", "  ")
}
