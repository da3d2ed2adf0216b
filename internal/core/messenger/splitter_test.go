package messenger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplitTextShortMessage(t *testing.T) {
	parts := SplitText("hello there", MaxMessageLength)
	require.Len(t, parts, 1)
	assert.Equal(t, "hello there", parts[0])
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", MaxMessageLength))
	assert.Nil(t, SplitText("   \n ", MaxMessageLength))
}

func TestSplitTextSentenceBoundaries(t *testing.T) {
	parts := SplitText("A. B. C.", 5)

	require.NotEmpty(t, parts)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 5)
		assert.NotEmpty(t, p)
	}
	assert.Equal(t, "A.B.C.", stripSpace(strings.Join(parts, "")))
}

func TestSplitTextPrefersSentenceEnd(t *testing.T) {
	parts := SplitText("First one. Second piece here.", 15)

	require.GreaterOrEqual(t, len(parts), 2)
	assert.Equal(t, "First one.", parts[0])
}

func TestSplitTextWordFallback(t *testing.T) {
	parts := SplitText("alpha beta gamma delta", 11)

	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 11)
	}
	assert.Equal(t, "alphabetagammadelta", stripSpace(strings.Join(parts, "")))
}

func TestSplitTextHardCut(t *testing.T) {
	long := strings.Repeat("x", 30)
	parts := SplitText(long, 10)

	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.Equal(t, strings.Repeat("x", 10), p)
	}
}

func TestSplitTextKeepsDecimals(t *testing.T) {
	parts := SplitText("Price is 3.14 dollars total", 20)

	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 20)
	}
	assert.Contains(t, strings.Join(parts, " "), "3.14")
}

func TestSplitTextRuneSafe(t *testing.T) {
	// Cyrillic runes are multi-byte; the limit is in runes, not bytes.
	text := strings.Repeat("п", 600)
	parts := SplitText(text, MaxMessageLength)

	require.Len(t, parts, 2)
	assert.Len(t, []rune(parts[0]), MaxMessageLength)
	assert.Len(t, []rune(parts[1]), 600-MaxMessageLength)
}
