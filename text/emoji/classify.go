package emoji

// IsEmoji reports whether the rune is an emoji character, including
// components and characters that become emoji with U+FE0F. Synthetic
// bold and italic are suppressed for these runes.
func IsEmoji(r rune) bool {
	return isEmojiPresentation(r) || isEmojiComponent(r) || isTextPresentationEmoji(r)
}

// IsEmojiPresentation reports whether the rune defaults to emoji
// presentation without requiring U+FE0F.
func IsEmojiPresentation(r rune) bool {
	return isEmojiPresentation(r)
}

// IsVariationSelector reports whether the rune is one of the
// presentation variation selectors U+FE0E or U+FE0F.
func IsVariationSelector(r rune) bool {
	return r == 0xFE0E || r == 0xFE0F
}

// isEmojiComponent covers characters that only appear inside emoji
// sequences.
func isEmojiComponent(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag characters
		return true
	case r == 0x200D: // zero-width joiner
		return true
	case r == 0xFE0E || r == 0xFE0F: // variation selectors
		return true
	case r == 0x20E3: // combining enclosing keycap
		return true
	}
	return false
}

// isEmojiPresentation covers the Emoji_Presentation=Yes blocks.
func isEmojiPresentation(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // misc symbols and pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental pictographs
		return true
	case r >= 0x1FA00 && r <= 0x1FAFF: // extended-A and extended-B
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F000 && r <= 0x1F02F: // mahjong tiles
		return true
	case r >= 0x1F0A0 && r <= 0x1F0FF: // playing cards
		return true
	}
	return false
}

// isTextPresentationEmoji covers characters with Emoji=Yes but
// Emoji_Presentation=No, which render as emoji only with U+FE0F.
func isTextPresentationEmoji(r rune) bool {
	switch {
	case r >= 0x2702 && r <= 0x27B0: // dingbats
		return true
	case r >= 0x2600 && r <= 0x26FF: // misc symbols
		return true
	case r == 0x2194 || r == 0x2195 || (r >= 0x2196 && r <= 0x2199):
		return true
	case r == 0x21A9 || r == 0x21AA:
		return true
	case r == 0x203C || r == 0x2049:
		return true
	case r == 0x2139:
		return true
	case r == 0x24C2:
		return true
	case r >= 0x23E9 && r <= 0x23F3:
		return true
	case r >= 0x23F8 && r <= 0x23FA:
		return true
	case r == 0x27BF:
		return true
	case r >= 0x2934 && r <= 0x2935:
		return true
	case r >= 0x2B05 && r <= 0x2B07:
		return true
	case r == 0x2B1B || r == 0x2B1C:
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	case r == 0x3030 || r == 0x303D:
		return true
	case r == 0x3297 || r == 0x3299:
		return true
	case r == 0x00A9 || r == 0x00AE:
		return true
	case r == 0x2122:
		return true
	}
	return false
}
