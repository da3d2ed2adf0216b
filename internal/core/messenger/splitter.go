package messenger

import "strings"

// MaxMessageLength is the per-message size cap shared by the supported
// channels.
const MaxMessageLength = 512

var sentenceEnders = []rune{'.', '!', '?'}

// SplitText breaks text into ordered parts no longer than max runes each.
// Boundaries are chosen at the last sentence end inside the window, falling
// back to the last whitespace, falling back to a hard cut. Parts are trimmed
// and never empty; concatenating them restores the original text up to the
// whitespace eaten at the boundaries.
func SplitText(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var parts []string
	remaining := []rune(text)
	for len(remaining) > max {
		cut := findCut(remaining, max)
		part := strings.TrimSpace(string(remaining[:cut]))
		if part != "" {
			parts = append(parts, part)
		}
		remaining = []rune(strings.TrimLeft(string(remaining[cut:]), " \t\n\r"))
	}
	if len(remaining) > 0 {
		parts = append(parts, string(remaining))
	}
	return parts
}

// findCut returns the index (exclusive) to cut at, <= max and > 0.
func findCut(text []rune, max int) int {
	window := text[:max]

	// prefer a sentence boundary
	for i := max - 1; i >= 0; i-- {
		if isSentenceEnd(window[i]) {
			// don't split decimals like "3.14"
			if window[i] == '.' && i+1 < len(text) && isDigit(text[i+1]) && i > 0 && isDigit(window[i-1]) {
				continue
			}
			return i + 1
		}
	}

	// then a word boundary
	for i := max - 1; i > 0; i-- {
		if window[i] == ' ' || window[i] == '\n' || window[i] == '\t' {
			return i
		}
	}

	// no boundary at all: hard cut
	return max
}

func isSentenceEnd(r rune) bool {
	for _, e := range sentenceEnders {
		if r == e {
			return true
		}
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
