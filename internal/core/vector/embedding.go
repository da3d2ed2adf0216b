package vector

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingProvider defines the interface for text embedding generation
type EmbeddingProvider interface {
	// GenerateEmbedding generates an embedding vector for a single text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateBatchEmbeddings generates embeddings for multiple texts
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// GetDimensions returns the dimension size of the embeddings
	GetDimensions() int

	// GetProviderName returns the provider name
	GetProviderName() string
}

// OpenAIEmbeddingProvider implements EmbeddingProvider using OpenAI. One
// instance is built per request with the tenant's own API key.
type OpenAIEmbeddingProvider struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIEmbeddingProvider creates a new OpenAI embedding provider
// Default model: text-embedding-3-small (1536 dimensions)
func NewOpenAIEmbeddingProvider(apiKey string, model string) (*OpenAIEmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "text-embedding-3-small"
	}

	dims := 1536
	switch model {
	case "text-embedding-3-small":
		dims = 1536
	case "text-embedding-3-large":
		dims = 3072
	case "text-embedding-ada-002":
		dims = 1536
	}

	client := openai.NewClient(apiKey)

	return &OpenAIEmbeddingProvider{
		client: client,
		model:  model,
		dims:   dims,
	}, nil
}

// GenerateEmbedding generates an embedding for a single text
func (p *OpenAIEmbeddingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}

// GenerateBatchEmbeddings generates embeddings for multiple texts
func (p *OpenAIEmbeddingProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}

// GetDimensions returns the dimension size
func (p *OpenAIEmbeddingProvider) GetDimensions() int {
	return p.dims
}

// GetProviderName returns the provider name
func (p *OpenAIEmbeddingProvider) GetProviderName() string {
	return fmt.Sprintf("openai_%s", p.model)
}
