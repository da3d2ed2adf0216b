package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	assistantPollInterval = 5 * time.Second
	assistantMaxPolls     = 60
)

const assistantContextNote = "None, it's GPT assistant mode!"

// AssistantQuery runs the question through a pre-configured OpenAI assistant:
// create a thread, post the message, start a run and poll until it completes.
// Polling is bounded both by the context deadline and by a hard cap so a
// stuck run can never pin a worker forever.
func (e *Engine) AssistantQuery(ctx context.Context, assistantID, question string) (*QueryResult, error) {
	if assistantID == "" {
		return nil, fmt.Errorf("assistant id is not configured")
	}

	thread, err := e.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	_, err = e.client.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	run, err := e.client.CreateRun(ctx, thread.ID, openai.RunRequest{
		AssistantID: assistantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	for polls := 0; polls < assistantMaxPolls; polls++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("assistant run interrupted: %w", ctx.Err())
		case <-time.After(assistantPollInterval):
		}

		status, err := e.client.RetrieveRun(ctx, thread.ID, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll run: %w", err)
		}

		switch status.Status {
		case openai.RunStatusCompleted:
			return e.assistantAnswer(ctx, thread.ID)
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			return nil, fmt.Errorf("assistant run ended with status %s", status.Status)
		}
	}

	return nil, fmt.Errorf("assistant run did not complete after %d polls", assistantMaxPolls)
}

func (e *Engine) assistantAnswer(ctx context.Context, threadID string) (*QueryResult, error) {
	messages, err := e.client.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for _, msg := range messages.Messages {
		if msg.Role != "assistant" {
			continue
		}
		if len(msg.Content) == 0 || msg.Content[0].Text == nil {
			continue
		}
		return &QueryResult{
			Response:   msg.Content[0].Text.Value,
			EvalResult: evalResultScore,
			LLMContext: assistantContextNote,
		}, nil
	}

	return nil, fmt.Errorf("assistant produced no answer")
}
