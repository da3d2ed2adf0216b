package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QdrantProvider implements Provider against the Qdrant HTTP API. Works for
// both self-hosted instances (empty api key) and Qdrant Cloud.
type QdrantProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewQdrantProvider(url, apiKey string) (*QdrantProvider, error) {
	if url == "" {
		return nil, fmt.Errorf("Qdrant URL is required")
	}

	return &QdrantProvider{
		apiKey: apiKey,
		url:    url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// CreateCollection creates a cosine-distance collection.
func (p *QdrantProvider) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	payload := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	return p.doRequest(ctx, "PUT", fmt.Sprintf("/collections/%s", name), payload, nil)
}

func (p *QdrantProvider) DeleteCollection(ctx context.Context, name string) error {
	return p.doRequest(ctx, "DELETE", fmt.Sprintf("/collections/%s", name), nil, nil)
}

func (p *QdrantProvider) CollectionExists(ctx context.Context, name string) (bool, error) {
	var response struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}

	err := p.doRequest(ctx, "GET", fmt.Sprintf("/collections/%s/exists", name), nil, &response)
	if err != nil {
		return false, err
	}
	return response.Result.Exists, nil
}

// Upsert inserts or updates points
func (p *QdrantProvider) Upsert(ctx context.Context, collection string, points []Point) error {
	qdrantPoints := make([]map[string]interface{}, len(points))
	for i, point := range points {
		qdrantPoints[i] = map[string]interface{}{
			"id":      point.ID,
			"vector":  point.Vector,
			"payload": point.Payload,
		}
	}

	payload := map[string]interface{}{
		"points": qdrantPoints,
	}

	return p.doRequest(ctx, "PUT", fmt.Sprintf("/collections/%s/points", collection), payload, nil)
}

// Search performs similarity search
func (p *QdrantProvider) Search(ctx context.Context, collection string, query []float32, limit int, filter *Filter) ([]SearchResult, error) {
	payload := map[string]interface{}{
		"vector":       query,
		"limit":        limit,
		"with_payload": true,
	}

	if filter != nil {
		payload["filter"] = convertFilter(filter)
	}

	var response struct {
		Result []struct {
			ID      string                 `json:"id"`
			Score   float32                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}

	err := p.doRequest(ctx, "POST", fmt.Sprintf("/collections/%s/points/search", collection), payload, &response)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(response.Result))
	for i, r := range response.Result {
		results[i] = SearchResult{
			ID:      r.ID,
			Score:   r.Score,
			Payload: r.Payload,
		}
	}

	return results, nil
}

// Close closes the connection
func (p *QdrantProvider) Close() error {
	// HTTP client doesn't need explicit closing
	return nil
}

func (p *QdrantProvider) GetProviderType() string {
	return "qdrant"
}

// doRequest performs an HTTP request against the Qdrant API
func (p *QdrantProvider) doRequest(ctx context.Context, method, path string, payload interface{}, result interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.url+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if p.apiKey != "" {
		req.Header.Set("api-key", p.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func convertFilter(filter *Filter) map[string]interface{} {
	qdrantFilter := make(map[string]interface{})

	if len(filter.Must) > 0 {
		must := make([]map[string]interface{}, len(filter.Must))
		for i, cond := range filter.Must {
			must[i] = map[string]interface{}{
				"key":   cond.Key,
				"match": map[string]interface{}{"value": cond.Match},
			}
		}
		qdrantFilter["must"] = must
	}

	return qdrantFilter
}
