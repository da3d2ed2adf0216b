package vector

import (
	"context"
)

// Provider defines the interface for vector database operations.
type Provider interface {
	// CreateCollection creates a new collection (if not exists)
	CreateCollection(ctx context.Context, name string, vectorSize int) error

	// DeleteCollection deletes a collection
	DeleteCollection(ctx context.Context, name string) error

	// CollectionExists reports whether a collection is present
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Upsert inserts or updates vectors in a collection
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs similarity search
	Search(ctx context.Context, collection string, query []float32, limit int, filter *Filter) ([]SearchResult, error)

	// Close closes the connection
	Close() error

	// GetProviderType returns the provider type
	GetProviderType() string
}

// Point represents a vector point with metadata
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// SearchResult represents a search result
type SearchResult struct {
	ID      string                 `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Text returns the stored chunk text from the payload.
func (r SearchResult) Text() string {
	if r.Payload == nil {
		return ""
	}
	if s, ok := r.Payload["text"].(string); ok {
		return s
	}
	return ""
}

// Filter represents search filters
type Filter struct {
	Must []Condition `json:"must,omitempty"`
}

// Condition represents a filter condition
type Condition struct {
	Key   string      `json:"key"`
	Match interface{} `json:"match,omitempty"`
}
