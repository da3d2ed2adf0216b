package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

// QueryResult is the answer to one question.
type QueryResult struct {
	Response   string
	EvalResult float64
	LLMContext string
	TokensUsed int
}

// evalResultScore is the fixed score returned while the correctness
// evaluator stays disabled. Every bot mode compares against the tenant's
// eval_score, so the constant keeps strict mode permissive.
const evalResultScore = 5

// Engine runs chat completions with a tenant's own OpenAI key.
type Engine struct {
	client *openai.Client
}

func NewEngine(apiKey string) (*Engine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &Engine{client: openai.NewClient(apiKey)}, nil
}

// Query answers a question grounded in the retrieved passages using the
// tenant's model, temperature and token limit.
func (e *Engine) Query(ctx context.Context, bu *models.BusinessUnit, question, historyBlock string, contextPassages []string) (*QueryResult, error) {
	req := openai.ChatCompletionRequest{
		Model: bu.GPTModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(bu.SystemPrompt, historyBlock)},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserMessage(question, contextPassages)},
		},
		Temperature: bu.Temperature,
	}
	if bu.MaxTokens > 0 {
		req.MaxTokens = bu.MaxTokens
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	llmContext := ""
	if len(contextPassages) > 0 {
		llmContext = contextPassages[0]
	}

	return &QueryResult{
		Response:   resp.Choices[0].Message.Content,
		EvalResult: evalResultScore,
		LLMContext: llmContext,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
