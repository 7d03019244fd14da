// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"testing"

	"github.com/jeranaias/treehole-tui/internal/model"
)

func TestClassifyDefaults(t *testing.T) {
	c := Classify("完全无关的内容呀呀呀这是一条足够长的没有任何关键词的句子", false)
	if c.Emotion != model.EmotionNeutral {
		t.Errorf("Emotion = %v, want neutral", c.Emotion)
	}
	if c.ContentType != model.ContentOther {
		t.Errorf("ContentType = %v, want other", c.ContentType)
	}
	if !c.Valid() {
		t.Error("classification must always be valid")
	}
}

func TestClassifySadBeforeHappy(t *testing.T) {
	// Contains both a sad keyword and a happy keyword; sad wins.
	c := Classify("虽然今天很开心但还是很难过", false)
	if c.Emotion != model.EmotionSad {
		t.Errorf("Emotion = %v, want sad when both present", c.Emotion)
	}
}

func TestClassifyContentOrder(t *testing.T) {
	tests := []struct {
		text string
		want model.ContentType
	}{
		{"上班的时候考试了", model.ContentWork},          // work outranks study
		{"考试和男朋友吵架", model.ContentStudy},         // study outranks relationship
		{"男朋友做的吃饭", model.ContentRelationship},    // relationship outranks life
		{"最近发生了一些事情", model.ContentLife},         // life outranks event
		{"后来感觉还行有这么长一段呢", model.ContentEvent}, // event outranks mood
		{"这个情绪说不清楚但句子足够长不触发心情兜底规则呢", model.ContentMood},
	}
	for _, tt := range tests {
		if got := Classify(tt.text, false).ContentType; got != tt.want {
			t.Errorf("Classify(%q) content = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifyImageForcesContent(t *testing.T) {
	// Keywords for work are present but the image wins.
	c := Classify("今天工作好累", true)
	if c.ContentType != model.ContentImage {
		t.Errorf("ContentType = %v, want image", c.ContentType)
	}
	// Emotion keywords still apply when text accompanies the image.
	c = Classify("好难过", true)
	if c.Emotion != model.EmotionSad {
		t.Errorf("Emotion = %v, want sad", c.Emotion)
	}
}

func TestClassifyImageEmptyTextNeutral(t *testing.T) {
	tests := []string{"", "   ", "\t\n"}
	for _, text := range tests {
		c := Classify(text, true)
		if c.Emotion != model.EmotionNeutral {
			t.Errorf("Classify(%q, image) emotion = %v, want neutral", text, c.Emotion)
		}
		if c.ContentType != model.ContentImage {
			t.Errorf("Classify(%q, image) content = %v, want image", text, c.ContentType)
		}
	}
}

func TestClassifyShortEmotionalTextIsMood(t *testing.T) {
	// Sad keyword, no content keyword, under 20 runes.
	c := Classify("好难过啊", false)
	if c.Emotion != model.EmotionSad {
		t.Errorf("Emotion = %v, want sad", c.Emotion)
	}
	if c.ContentType != model.ContentMood {
		t.Errorf("ContentType = %v, want mood for short emotional text", c.ContentType)
	}
}

func TestClassifyLongEmotionalTextStaysOther(t *testing.T) {
	// Sad keyword, no content keyword, 20+ runes: the mood override
	// must not fire.
	text := "失望失望失望失望失望失望失望失望失望失望"
	if got := len([]rune(text)); got < shortTextRunes {
		t.Fatalf("test text too short: %d runes", got)
	}
	c := Classify(text, false)
	if c.Emotion != model.EmotionSad {
		t.Errorf("Emotion = %v, want sad", c.Emotion)
	}
	if c.ContentType != model.ContentOther {
		t.Errorf("ContentType = %v, want other for long text", c.ContentType)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	// The relationship table contains lowercase "ta".
	c := Classify("TA", false)
	if c.ContentType != model.ContentRelationship {
		t.Errorf("ContentType = %v, want relationship for mixed-case keyword", c.ContentType)
	}
}

func TestClassifyWorkExample(t *testing.T) {
	c := Classify("今天工作好累", false)
	if c.ContentType != model.ContentWork {
		t.Errorf("ContentType = %v, want work", c.ContentType)
	}
	if c.Emotion != model.EmotionNeutral {
		t.Errorf("Emotion = %v, want neutral (累 is not an emotion keyword)", c.Emotion)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		a := Classify("難过 considering mixed 内容", true)
		b := Classify("難过 considering mixed 内容", true)
		if a != b {
			t.Fatal("Classify is not deterministic")
		}
	}
}
