package cohere

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumina-ai/rag-backend/internal/cfg"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg(baseURL string) *cfg.CohereCfg {
	return &cfg.CohereCfg{
		ApiKey:        "test-key",
		BaseURL:       baseURL,
		Model:         "embed-english-v3.0",
		Timeout:       5 * time.Second,
		MaxConcurrent: 2,
		MaxBatchSize:  96,
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

// makeVector кодирует порядковый номер текста в первую координату,
// чтобы тест мог проверить сохранение порядка.
func makeVector(ordinal int) []float32 {
	return []float32{float32(ordinal), 0, 0}
}

func embedServer(t *testing.T, handler func(w http.ResponseWriter, req embedRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/embed", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
}

func TestEmbed_SingleBatch(t *testing.T) {
	var gotInputType string
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		gotInputType = req.InputType

		embeddings := make([][]float32, len(req.Texts))
		for i := range req.Texts {
			embeddings[i] = makeVector(i)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	vectors, err := client.Embed(context.Background(), []string{"a", "b", "c"}, domain.PurposeDocument)

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, "search_document", gotInputType)
	for i, vector := range vectors {
		assert.Equal(t, float32(i), vector[0])
	}
}

func TestEmbed_QueryPurpose(t *testing.T) {
	var gotInputType string
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		gotInputType = req.InputType
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{makeVector(0)}})
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	_, err := client.Embed(context.Background(), []string{"query"}, domain.PurposeQuery)

	require.NoError(t, err)
	assert.Equal(t, "search_query", gotInputType)
}

func TestEmbed_ChunkedPreservesOrder(t *testing.T) {
	// Каждый текст несёт свой порядковый номер; сервер кодирует его в вектор
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%02d", i)
	}

	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		embeddings := make([][]float32, len(req.Texts))
		for i, text := range req.Texts {
			var ordinal int
			fmt.Sscanf(text, "text-%d", &ordinal)
			embeddings[i] = makeVector(ordinal)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	})
	defer srv.Close()

	config := testCfg(srv.URL)
	config.MaxBatchSize = 4
	client := NewClient(config, nopLogger{})

	vectors, err := client.Embed(context.Background(), texts, domain.PurposeDocument)

	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, vector := range vectors {
		assert.Equal(t, float32(i), vector[0], "vector %d out of order", i)
	}
}

func TestEmbed_RateLimited(t *testing.T) {
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(embedResponse{Message: "quota exceeded"})
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	_, err := client.Embed(context.Background(), []string{"a"}, domain.PurposeDocument)

	assert.ErrorIs(t, err, e.ErrRateLimited)
}

func TestEmbed_AuthFailure(t *testing.T) {
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(embedResponse{Message: "invalid api token"})
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	_, err := client.Embed(context.Background(), []string{"a"}, domain.PurposeDocument)

	assert.ErrorIs(t, err, e.ErrProviderFailure)
}

func TestEmbed_WrongVectorCount(t *testing.T) {
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{makeVector(0)}})
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	_, err := client.Embed(context.Background(), []string{"a", "b"}, domain.PurposeDocument)

	assert.ErrorIs(t, err, e.ErrVectorCountMismatch)
	assert.ErrorIs(t, err, e.ErrContractViolation)
}

func TestEmbed_MalformedResponse(t *testing.T) {
	srv := embedServer(t, func(w http.ResponseWriter, req embedRequest) {
		w.Write([]byte("not json at all"))
	})
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), nopLogger{})

	_, err := client.Embed(context.Background(), []string{"a"}, domain.PurposeDocument)

	assert.ErrorIs(t, err, e.ErrContractViolation)
}

func TestEmbed_EmptyInput(t *testing.T) {
	client := NewClient(testCfg("http://unused"), nopLogger{})

	_, err := client.Embed(context.Background(), nil, domain.PurposeDocument)

	assert.ErrorIs(t, err, e.ErrNoTexts)
}

func TestChunkTexts(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}

	chunks := chunkTexts(texts, 2)

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"c", "d"}, chunks[1])
	assert.Equal(t, []string{"e"}, chunks[2])

	assert.Len(t, chunkTexts(texts, 0), 1)
	assert.Len(t, chunkTexts(texts, 10), 1)
}
