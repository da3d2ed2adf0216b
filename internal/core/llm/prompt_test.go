package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

func TestHistoryBlockEmpty(t *testing.T) {
	assert.Empty(t, HistoryBlock(nil))
}

func TestHistoryBlockFormat(t *testing.T) {
	chats := []models.ChatHistory{
		{UserQuestion: "When does the course start?", SystemAnswer: "Next Monday."},
		{UserQuestion: "How much is it?", SystemAnswer: "100 USD."},
	}

	block := HistoryBlock(chats)

	assert.True(t, strings.HasPrefix(block,
		"\nIt is also important for you to communicate based on previous questions/answers."))
	assert.Contains(t, block, "Previous Message 1\nUser question:\nWhen does the course start?\nYour answer:\nNext Monday.")
	assert.Contains(t, block, "Previous Message 2\nUser question:\nHow much is it?\nYour answer:\n100 USD.")

	// newest exchange must come first
	first := strings.Index(block, "When does the course start?")
	second := strings.Index(block, "How much is it?")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestBuildSystemPrompt(t *testing.T) {
	got := BuildSystemPrompt("You are a school assistant.", "\nhistory here")
	assert.Equal(t, "You are a school assistant.\nhistory here", got)
}

func TestBuildUserMessageWithContext(t *testing.T) {
	got := BuildUserMessage("when do lessons start?", []string{"Lessons start at 9am."})

	assert.Contains(t, got, "Context information is below.")
	assert.Contains(t, got, "Lessons start at 9am.")
	assert.Contains(t, got, "Query: when do lessons start?")
}

func TestBuildUserMessageWithoutContext(t *testing.T) {
	assert.Equal(t, "plain question", BuildUserMessage("plain question", nil))
}
