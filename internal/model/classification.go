// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// EMOTION TYPE
// =============================================================================

// Emotion is the coarse emotional tone detected in a user message.
type Emotion string

const (
	EmotionSad     Emotion = "sad"
	EmotionHappy   Emotion = "happy"
	EmotionNeutral Emotion = "neutral"
)

// String returns the string representation of the emotion.
func (e Emotion) String() string {
	return string(e)
}

// DisplayName returns the label shown in the UI.
func (e Emotion) DisplayName() string {
	switch e {
	case EmotionSad:
		return "悲伤"
	case EmotionHappy:
		return "高兴"
	case EmotionNeutral:
		return "中性"
	default:
		return string(e)
	}
}

// Valid reports whether e is one of the known emotions.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionSad, EmotionHappy, EmotionNeutral:
		return true
	}
	return false
}

// Emotions lists every emotion in display order.
func Emotions() []Emotion {
	return []Emotion{EmotionSad, EmotionHappy, EmotionNeutral}
}

// =============================================================================
// CONTENT TYPE
// =============================================================================

// ContentType is the coarse topic category detected in a user message.
type ContentType string

const (
	ContentEvent        ContentType = "event"
	ContentRelationship ContentType = "relationship"
	ContentMood         ContentType = "mood"
	ContentImage        ContentType = "image"
	ContentWork         ContentType = "work"
	ContentStudy        ContentType = "study"
	ContentLife         ContentType = "life"
	ContentOther        ContentType = "other"
)

// String returns the string representation of the content type.
func (c ContentType) String() string {
	return string(c)
}

// DisplayName returns the label shown in the UI.
func (c ContentType) DisplayName() string {
	switch c {
	case ContentEvent:
		return "事件"
	case ContentRelationship:
		return "感情"
	case ContentMood:
		return "心情"
	case ContentImage:
		return "图片"
	case ContentWork:
		return "工作"
	case ContentStudy:
		return "学习"
	case ContentLife:
		return "生活"
	case ContentOther:
		return "其他"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentEvent, ContentRelationship, ContentMood, ContentImage,
		ContentWork, ContentStudy, ContentLife, ContentOther:
		return true
	}
	return false
}

// ContentTypes lists every content type in display order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentEvent, ContentRelationship, ContentMood, ContentImage,
		ContentWork, ContentStudy, ContentLife, ContentOther,
	}
}

// =============================================================================
// CLASSIFICATION TYPE
// =============================================================================

// Classification is the tag attached to a user message after the
// classifier has run. AI messages never carry one.
type Classification struct {
	Emotion     Emotion     `json:"emotion"`
	ContentType ContentType `json:"contentType"`
}

// Valid reports whether both fields hold known values.
func (c Classification) Valid() bool {
	return c.Emotion.Valid() && c.ContentType.Valid()
}

// DisplayName returns the combined UI label, e.g. "悲伤 · 工作".
func (c Classification) DisplayName() string {
	return c.Emotion.DisplayName() + " · " + c.ContentType.DisplayName()
}
