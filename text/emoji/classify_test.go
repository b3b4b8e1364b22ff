package emoji

import "testing"

func TestIsEmoji(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want bool
	}{
		{"grinning face", 0x1F600, true},
		{"rocket", 0x1F680, true},
		{"red heart", 0x2764, true},
		{"sun", 0x2600, true},
		{"skin tone", 0x1F3FB, true},
		{"regional indicator", 0x1F1FA, true},
		{"ZWJ", 0x200D, true},
		{"variation selector 16", 0xFE0F, true},
		{"copyright", 0x00A9, true},
		{"latin a", 'a', false},
		{"box drawing", 0x2500, false},
		{"braille", 0x2847, false},
		{"CJK", 0x4E2D, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmoji(tt.r); got != tt.want {
				t.Errorf("IsEmoji(%#x) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestIsEmojiPresentation(t *testing.T) {
	if !IsEmojiPresentation(0x1F600) {
		t.Error("grinning face should default to emoji presentation")
	}
	// Sun is Emoji=Yes but needs U+FE0F for emoji presentation.
	if IsEmojiPresentation(0x2600) {
		t.Error("sun should not default to emoji presentation")
	}
	if IsEmojiPresentation('a') {
		t.Error("latin letter should not be emoji presentation")
	}
}

func TestIsVariationSelector(t *testing.T) {
	if !IsVariationSelector(0xFE0E) || !IsVariationSelector(0xFE0F) {
		t.Error("U+FE0E and U+FE0F are variation selectors")
	}
	if IsVariationSelector(0xFE0D) {
		t.Error("U+FE0D is not a presentation variation selector")
	}
}
