package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		key := GenerateAPIKey()
		require.Len(t, key, 9)

		parts := strings.Split(key, "-")
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], 4)
		assert.Len(t, parts[1], 4)

		for _, r := range parts[0] {
			assert.Contains(t, apikeyDigits, string(r))
		}
	}
}

func TestGenerateAPIKeyExcludesAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 200; i++ {
		key := GenerateAPIKey()
		assert.NotContains(t, key, "1")
		assert.NotContains(t, key, "I")
		assert.NotContains(t, key, "l")
	}
}

func TestSimilarityThresholdClamping(t *testing.T) {
	tests := []struct {
		name       string
		configured float64
		want       float64
	}{
		{"below floor", 0.10, 0.50},
		{"at floor", 0.50, 0.50},
		{"default", 0.79, 0.79},
		{"at ceiling", 0.94, 0.94},
		{"above ceiling", 0.99, 0.94},
		{"zero", 0, 0.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bu := &BusinessUnit{SimilaritySimpleQ: tt.configured}
			assert.Equal(t, tt.want, bu.SimilarityThreshold())
		})
	}
}

func TestSimpleQuestionVariants(t *testing.T) {
	sq := &SimpleQuestion{Question: "when do you open? | opening hours |  "}
	assert.Equal(t, []string{"when do you open?", "opening hours"}, sq.Variants())

	single := &SimpleQuestion{Question: "price"}
	assert.Equal(t, []string{"price"}, single.Variants())
}

func TestDocumentIsGoogleDoc(t *testing.T) {
	assert.True(t, (&Document{DocumentID: "doc-1"}).IsGoogleDoc())
	assert.False(t, (&Document{FilePath: "media/files/a.txt"}).IsGoogleDoc())
}
