// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify tags user messages with a coarse emotion and content
// category using keyword matching. No inference, no state, no failure
// modes: every input maps to a valid tag pair.
package classify

import (
	"strings"

	"github.com/jeranaias/treehole-tui/internal/model"
)

// shortTextRunes is the cutoff below which an emotional message with no
// other category match is filed under mood.
const shortTextRunes = 20

// ============================================================================
// KEYWORD TABLES
// ============================================================================

// emotionKeywords is scanned in slice order; the first list with any
// match wins. Sad is checked before happy deliberately, so a message
// containing both reads as sad.
var emotionKeywords = []struct {
	emotion  model.Emotion
	keywords []string
}{
	{model.EmotionSad, []string{
		"难过", "伤心", "哭", "不开心", "痛苦", "郁闷", "烦", "唉", "失望",
	}},
	{model.EmotionHappy, []string{
		"开心", "高兴", "快乐", "哈哈", "嘻嘻", "太棒了", "好棒", "幸福", "幸运",
	}},
}

// contentKeywords is scanned in slice order; the first list with any
// match wins. Work outranks study, study outranks relationship, and so
// on down to mood. The order is a fixed tie-break policy, not an
// accident of iteration.
var contentKeywords = []struct {
	content  model.ContentType
	keywords []string
}{
	{model.ContentWork, []string{
		"工作", "上班", "同事", "老板", "公司", "项目", "加班", "职业",
	}},
	{model.ContentStudy, []string{
		"学习", "考试", "作业", "同学", "老师", "学校", "课程", "论文",
	}},
	{model.ContentRelationship, []string{
		"喜欢", "爱", "男朋友", "女朋友", "分手", "关系", "暗恋", "约会", "ta",
	}},
	{model.ContentLife, []string{
		"生活", "日常", "今天", "明天", "事情", "最近", "东西", "吃饭",
	}},
	{model.ContentEvent, []string{
		"发生", "遇到", "经历", "然后", "后来", "结果",
	}},
	{model.ContentMood, []string{
		"感觉", "觉得", "心情", "情绪",
	}},
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// Classify tags a message with an emotion and a content category.
//
// Classification rules (in order):
//  1. Defaults: neutral emotion, other content.
//  2. An attached image forces content to image before any keyword scan.
//  3. Emotion: case-insensitive substring scan of the emotion tables,
//     sad list first; the first list with any match wins.
//  4. Content (skipped when already image): substring scan of the
//     content tables in order work, study, relationship, life, event,
//     mood; the first list with any match wins.
//  5. Overrides, in order:
//     a. image with empty trimmed text resets emotion to neutral;
//     b. content still other, non-neutral emotion, and fewer than 20
//     runes of text reclassifies content as mood.
//
// Pure and total: same inputs always give the same tag pair, and the
// pair is always valid.
func Classify(text string, hasImage bool) model.Classification {
	lower := strings.ToLower(text)

	emotion := model.EmotionNeutral
	content := model.ContentOther

	if hasImage {
		content = model.ContentImage
	}

	for _, group := range emotionKeywords {
		if containsAny(lower, group.keywords) {
			emotion = group.emotion
			break
		}
	}

	if content != model.ContentImage {
		for _, group := range contentKeywords {
			if containsAny(lower, group.keywords) {
				content = group.content
				break
			}
		}
	}

	if content == model.ContentImage && strings.TrimSpace(text) == "" {
		emotion = model.EmotionNeutral
	} else if content == model.ContentOther && emotion != model.EmotionNeutral &&
		len([]rune(text)) < shortTextRunes {
		content = model.ContentMood
	}

	return model.Classification{Emotion: emotion, ContentType: content}
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
