package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides high-level vector operations over a provider and an
// embedding source.
type Service struct {
	provider  Provider
	embedding EmbeddingProvider
}

func NewService(provider Provider, embedding EmbeddingProvider) *Service {
	return &Service{
		provider:  provider,
		embedding: embedding,
	}
}

// CreateCollection creates a collection sized for the embedding model.
func (s *Service) CreateCollection(ctx context.Context, name string) error {
	return s.provider.CreateCollection(ctx, name, s.embedding.GetDimensions())
}

func (s *Service) DeleteCollection(ctx context.Context, name string) error {
	return s.provider.DeleteCollection(ctx, name)
}

func (s *Service) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.provider.CollectionExists(ctx, name)
}

// AddDocuments embeds documents in one batch and upserts them.
func (s *Service) AddDocuments(ctx context.Context, collection string, documents []Document) error {
	if len(documents) == 0 {
		return fmt.Errorf("no documents to add")
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Text
	}

	embeddings, err := s.embedding.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate batch embeddings: %w", err)
	}

	points := make([]Point, len(documents))
	for i, doc := range documents {
		payload := make(map[string]interface{})
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		payload["text"] = doc.Text

		id := doc.ID
		if id == "" {
			id = GenerateDocumentID()
		}

		points[i] = Point{
			ID:      id,
			Vector:  embeddings[i],
			Payload: payload,
		}
	}

	return s.provider.Upsert(ctx, collection, points)
}

// Search embeds the query and returns the closest chunks.
func (s *Service) Search(ctx context.Context, collection, query string, limit int, filter *Filter) ([]SearchResult, error) {
	queryEmbedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	return s.provider.Search(ctx, collection, queryEmbedding, limit, filter)
}

// Close releases the underlying provider's connections. Services are built
// per request with per-tenant credentials, so the pipeline closes them when
// retrieval is done.
func (s *Service) Close() error {
	return s.provider.Close()
}

// Document represents a document to be added to the vector database
type Document struct {
	ID       string                 // Unique document ID (if empty, UUID will be generated)
	Text     string                 // Document text content
	Metadata map[string]interface{} // Additional metadata
}

// GenerateDocumentID generates a unique UUID for a document
func GenerateDocumentID() string {
	return uuid.New().String()
}

// ChunkText splits long text into overlapping chunks. Sizes are in runes so
// multi-byte text never splits mid-character; the window always advances even
// when overlap >= maxChunkSize.
func ChunkText(text string, maxChunkSize int, overlap int) []string {
	runes := []rune(text)
	if maxChunkSize <= 0 {
		maxChunkSize = 1024
	}
	if overlap < 0 {
		overlap = 0
	}
	if len(runes) <= maxChunkSize {
		if len(runes) == 0 {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[start:end]))

		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// ChunkDocuments chunks a single large document into multiple smaller documents
func ChunkDocuments(doc Document, maxChunkSize int, overlap int) []Document {
	chunks := ChunkText(doc.Text, maxChunkSize, overlap)
	documents := make([]Document, len(chunks))

	baseID := doc.ID
	if baseID == "" {
		baseID = GenerateDocumentID()
	}

	for i, chunk := range chunks {
		metadata := make(map[string]interface{})
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["chunk_index"] = i
		metadata["total_chunks"] = len(chunks)
		metadata["parent_doc_id"] = baseID

		documents[i] = Document{
			ID:       GenerateDocumentID(),
			Text:     chunk,
			Metadata: metadata,
		}
	}

	return documents
}
