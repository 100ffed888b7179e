package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T, vectorsPerRequest int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		n := vectorsPerRequest
		if n < 0 {
			n = len(req.Input)
		}
		type datum struct {
			Embedding []float32 `json:"embedding"`
		}
		data := make([]datum, n)
		for i := range data {
			data[i] = datum{Embedding: []float32{float32(i), 1}}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
}

func TestEmbedBatchAlignsWithInput(t *testing.T) {
	srv := embeddingServer(t, -1)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	vectors, err := client.EmbedBatch(context.Background(), "test-model", []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{2, 1}, vectors[2])
}

func TestEmbedBatchRejectsBlankText(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	_, err := client.EmbedBatch(context.Background(), "test-model", []string{"alpha", "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestEmbedBatchRejectsCountMismatch(t *testing.T) {
	srv := embeddingServer(t, 1)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.EmbedBatch(context.Background(), "test-model", []string{"alpha", "beta"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestEmbedBatchEmptyInputIsNoOp(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	vectors, err := client.EmbedBatch(context.Background(), "test-model", nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
