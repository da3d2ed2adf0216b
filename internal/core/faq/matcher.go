package faq

import (
	"context"
	"fmt"
	"math"

	"github.com/RostislavDaniliv/eddy-school/internal/core/vector"
	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

// Match is a resolved FAQ answer with its similarity score.
type Match struct {
	Answer string
	Score  float64
}

// Matcher answers common questions without touching the document index. The
// incoming question is compared against every stored variant by embedding
// cosine similarity.
type Matcher struct {
	embedding vector.EmbeddingProvider
}

func NewMatcher(embedding vector.EmbeddingProvider) *Matcher {
	return &Matcher{embedding: embedding}
}

// FindClosest scores every variant of every FAQ entry and returns the best
// answer when it clears the threshold. Max tracking is strictly greater, so
// on a tie the first maximal variant in registration order wins.
func (m *Matcher) FindClosest(ctx context.Context, question string, faqs []models.SimpleQuestion, threshold float64) (*Match, bool, error) {
	type candidate struct {
		variant string
		answer  string
	}
	var candidates []candidate
	for _, faq := range faqs {
		for _, variant := range faq.Variants() {
			candidates = append(candidates, candidate{variant: variant, answer: faq.Answer})
		}
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, question)
	for _, c := range candidates {
		texts = append(texts, c.variant)
	}

	embeddings, err := m.embedding.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to embed faq variants: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, false, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(texts))
	}

	queryVec := embeddings[0]
	best := 0.0
	var bestAnswer string
	for i, c := range candidates {
		score := CosineSimilarity(queryVec, embeddings[i+1])
		if score > best {
			best = score
			bestAnswer = c.answer
		}
	}

	if best >= threshold {
		utils.LogInfo("faq short-circuit", map[string]interface{}{
			"score":     best,
			"threshold": threshold,
			"embedder":  m.embedding.GetProviderName(),
		})
		return &Match{Answer: bestAnswer, Score: best}, true, nil
	}
	return nil, false, nil
}

// CosineSimilarity of two vectors; zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
