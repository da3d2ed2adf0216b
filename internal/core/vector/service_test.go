package vector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShort(t *testing.T) {
	chunks := ChunkText("short text", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", 100, 10))
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := ChunkText(text, 10, 3)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 10)
	}
	// windows advance by size-overlap: 0-10, 7-17, 14-24, 21-25
	assert.Len(t, chunks, 4)
	assert.Equal(t, strings.Repeat("a", 4), chunks[3])
}

func TestChunkTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("b", 30)
	chunks := ChunkText(text, 10, 15)

	// window must still advance; degenerate overlap falls back to no overlap
	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkTextRuneSafe(t *testing.T) {
	text := strings.Repeat("ї", 12)
	chunks := ChunkText(text, 5, 0)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c, "ї"))
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkDocumentsMetadata(t *testing.T) {
	doc := Document{
		Text:     strings.Repeat("x", 25),
		Metadata: map[string]interface{}{"source": "handbook"},
	}
	docs := ChunkDocuments(doc, 10, 0)

	require.Len(t, docs, 3)
	parent := docs[0].Metadata["parent_doc_id"]
	for i, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, "handbook", d.Metadata["source"])
		assert.Equal(t, i, d.Metadata["chunk_index"])
		assert.Equal(t, 3, d.Metadata["total_chunks"])
		assert.Equal(t, parent, d.Metadata["parent_doc_id"])
	}
}
