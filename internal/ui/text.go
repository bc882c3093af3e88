package ui

import (
	"strings"
	"unicode/utf8"
)

// MaxInlineWidth bounds values echoed on a single progress line.
const MaxInlineWidth = 72

// Inline flattens text onto one line and shortens it to at most maxLen runes,
// cutting at the last word boundary when one is close enough.
func Inline(text string, maxLen int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if maxLen <= 0 || utf8.RuneCountInString(flat) <= maxLen {
		return flat
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}

	runes := []rune(flat)[:maxLen-3]
	cut := len(runes)
	// Prefer a space within the last quarter of the budget.
	for i := len(runes) - 1; i >= len(runes)*3/4; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "..."
}
