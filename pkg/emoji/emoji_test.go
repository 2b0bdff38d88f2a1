package emoji_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FrenchMajesty/emotion-classifier/pkg/emoji"
)

func TestAnnotate_KnownLabels(t *testing.T) {
	tests := map[string]string{
		"anger":    "😠",
		"disgust":  "🤮",
		"fear":     "😨😱",
		"happy":    "🤗",
		"joy":      "😂",
		"neutral":  "😐",
		"sad":      "😔",
		"sadness":  "😔",
		"shame":    "😳",
		"surprise": "😮",
	}

	for label, want := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, want, emoji.Annotate(label))
			assert.True(t, emoji.Known(label))
		})
	}
}

func TestAnnotate_UnknownLabelsDegradeToEmpty(t *testing.T) {
	for _, label := range []string{"", "ANGER", " joy", "love", "confused", "\x00"} {
		assert.Equal(t, "", emoji.Annotate(label), "label %q", label)
		assert.False(t, emoji.Known(label), "label %q", label)
	}
}

func TestLabels_AllHaveGlyphs(t *testing.T) {
	labels := emoji.Labels()
	assert.Len(t, labels, 10)

	seen := make(map[emoji.Label]bool)
	for _, l := range labels {
		assert.NotEmpty(t, l.Glyph(), "label %s", l)
		assert.False(t, seen[l], "duplicate label %s", l)
		seen[l] = true
	}
}
