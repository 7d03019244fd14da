// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reply selects the listener's response to a user message.
//
// There is no inference here. Replies come from fixed phrase tables
// keyed by simple greeting detection and image presence. Randomness is
// injected so tests can pin the selection.
package reply

import (
	"math/rand"
	"strings"
)

// =============================================================================
// MODE TYPE
// =============================================================================

// Mode selects how replies are produced.
type Mode string

const (
	// ModeTemplate picks from the built-in phrase tables.
	ModeTemplate Mode = "template"
	// ModeModelBacked delegates to a local inference runtime when it is
	// ready, degrading to a local composition otherwise.
	ModeModelBacked Mode = "model-backed"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTemplate || m == ModeModelBacked
}

// =============================================================================
// PHRASE TABLES
// =============================================================================

// comfortingPhrases is the default response pool.
var comfortingPhrases = []string{
	"嗯嗯，我听着呢。", "别担心，我在这里陪着你。", "这样啊，听起来这一定很不容易。", "没关系，把你想说的都说出来吧。",
	"我理解你的感受。", "谢谢你愿意告诉我这些。", "继续说，我一直在听。", "你不是一个人在面对这些。",
	"给你一个温暖的拥抱。", "你已经做得很好了。", "慢慢来，不着急。", "深呼吸，一切都会好起来的。",
	"你所说的，我都记在心里。", "拍拍你的背。", "你的感受是完全合理的。", "谢谢你，让我知道你的心事。",
	"这听起来让人心疼。", "这真的不怪你。", "请给自己一些空间和时间。", "你的感受值得被认真对待。",
	"辛苦了，真的辛苦了。", "允许自己脆弱，这是一种力量。", "如果可以，试着对自己温柔一点。", "放心，你的秘密在这里是安全的。",
	"继续说，我在。", "你已经承受了太多本不该你承受的东西。", "我能理解为什么你会这么想。", "这听起来像一个很沉重的负担。",
	"无论发生什么，感受自己的情绪都是可以的。", "慢慢说，把思绪理一理。", "我知道这不容易，但你正在努力。",
}

// greetingKeywords triggers the greeting response pool. Matching is a
// case-insensitive substring test against the trimmed input.
var greetingKeywords = []string{
	"你好", "hi", "hello", "在吗", "你好呀", "hey", "嗨", "哈喽",
	"早上好", "中午好", "下午好", "晚上好", "good morning",
	"good afternoon", "good evening", "yo", "what's up",
	"how are you", "有人吗", "吃了么",
}

// greetingResponses is picked from uniformly when a greeting matched.
var greetingResponses = []string{
	"你好呀！", "嗯嗯，我在。", "Hello!", "随时都在听你说。", "嗨！有什么想和我说的吗？",
}

// imageAckLine acknowledges an attached image in template mode.
const imageAckLine = "这张图片一定承载了很多心情，我会认真听你说。"

// ApologyLine substitutes for the reply when generation fails. The AI
// turn is still appended.
const ApologyLine = "抱歉，我好像走神了。你能再说一遍吗？"

// imageFollowUp trails the image acknowledgment in the blended
// composition used when the model-backed mode is not ready.
const imageFollowUp = "等你想说的时候，和我讲讲它背后的故事吧。"

// feelingAcks are the feeling-acknowledgment fragments of the blended
// composition.
var feelingAcks = []string{
	"你的心情我收到了。", "想说什么都可以。", "我在认真听。",
}

// =============================================================================
// SELECTOR
// =============================================================================

// IndexSource returns a uniform index in [0, n). Injected so tests can
// substitute a deterministic sequence.
type IndexSource func(n int) int

// Selector produces replies from the phrase tables.
type Selector struct {
	pick IndexSource
}

// NewSelector creates a selector backed by math/rand. The phrase pick
// does not need to be cryptographically random.
func NewSelector() *Selector {
	return &Selector{pick: rand.Intn}
}

// NewSelectorWithSource creates a selector with an injected index
// source.
func NewSelectorWithSource(src IndexSource) *Selector {
	return &Selector{pick: src}
}

// Reply selects a response for the given input.
//
// Template mode, in order:
//  1. A greeting keyword in the trimmed, lower-cased text picks a
//     uniform random greeting response.
//  2. An attached image picks the fixed image-acknowledgment line.
//  3. Otherwise a uniform random comforting phrase.
//
// Model-backed mode shares this selection when the runtime cannot
// answer; the caller routes ready-state requests to the runtime before
// falling back here via Compose.
//
// Never fails and never returns empty text.
func (s *Selector) Reply(text string, hasImage bool, mode Mode) string {
	if mode == ModeModelBacked {
		return s.Compose(text, hasImage)
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range greetingKeywords {
		if strings.Contains(lower, kw) {
			return greetingResponses[s.pick(len(greetingResponses))]
		}
	}
	if hasImage {
		return imageAckLine
	}
	return comfortingPhrases[s.pick(len(comfortingPhrases))]
}

// Compose builds the blended reply used when the model-backed mode
// degrades to local generation: greeting (or nothing), a feeling
// acknowledgment, and for images the acknowledgment plus follow-up,
// joined by single spaces with empty fragments skipped.
func (s *Selector) Compose(text string, hasImage bool) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	greeting := ""
	for _, kw := range greetingKeywords {
		if strings.Contains(lower, kw) {
			greeting = greetingResponses[s.pick(len(greetingResponses))]
			break
		}
	}

	fragments := []string{
		greeting,
		feelingAcks[s.pick(len(feelingAcks))],
	}
	if hasImage {
		fragments = append(fragments, imageAckLine, imageFollowUp)
	}

	nonEmpty := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// IsGreeting reports whether the text would take the greeting path.
func IsGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range greetingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
