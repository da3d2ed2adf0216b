package llm

import (
	"fmt"
	"strings"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

const historyHeader = "\nIt is also important for you to communicate based on previous questions/answers. " +
	"I have provided them below (this is very important for the integrity of the discussion):"

// HistoryBlock renders the most recent exchanges (newest first) into the
// prompt block the bot sees. Empty history renders nothing.
func HistoryBlock(chats []models.ChatHistory) string {
	if len(chats) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(historyHeader)
	for i, chat := range chats {
		sb.WriteString(fmt.Sprintf("\nPrevious Message %d\nUser question:\n%s\nYour answer:\n%s\n",
			i+1, chat.UserQuestion, chat.SystemAnswer))
	}
	return sb.String()
}

// BuildSystemPrompt combines the tenant's configured persona with the
// history block.
func BuildSystemPrompt(systemPrompt, historyBlock string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString(historyBlock)
	return sb.String()
}

// BuildUserMessage grounds the question in the retrieved passages.
func BuildUserMessage(question string, contextPassages []string) string {
	if len(contextPassages) == 0 {
		return question
	}

	var sb strings.Builder
	sb.WriteString("Context information is below.\n")
	sb.WriteString("---------------------\n")
	for _, passage := range contextPassages {
		sb.WriteString(passage)
		sb.WriteString("\n")
	}
	sb.WriteString("---------------------\n")
	sb.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	sb.WriteString("Query: ")
	sb.WriteString(question)
	return sb.String()
}
