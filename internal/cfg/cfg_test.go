package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("QDRANT_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "embeddings")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("BUCKET_NAME", "text-archive")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("MINIO_ROOT_PASSWORD", "minio-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Http.Port)
	assert.Equal(t, "embed-english-v3.0", cfg.Cohere.Model)
	assert.Equal(t, "https://api.cohere.ai", cfg.Cohere.BaseURL)
	assert.Equal(t, 96, cfg.Cohere.MaxBatchSize)
	assert.Equal(t, "text_embeddings", cfg.Qdrant.CollectionName)
	assert.Equal(t, uint64(1024), cfg.Qdrant.VectorSize)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "embedding-events", cfg.Kafka.Topic)
	assert.Equal(t, 3*time.Minute, cfg.Redis.RecordTTL)
}

func TestLoad_MissingProviderKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COHERE_API_KEY", "")

	_, err := Load(nopLogger{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "COHERE_API_KEY")
}

func TestLoad_MissingQdrantHost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QDRANT_HOST", "")

	_, err := Load(nopLogger{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "QDRANT_HOST")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COLLECTION_NAME", "custom_collection")
	t.Setenv("VECTOR_SIZE", "384")
	t.Setenv("COHERE_TIMEOUT", "10s")

	cfg, err := Load(nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, "custom_collection", cfg.Qdrant.CollectionName)
	assert.Equal(t, uint64(384), cfg.Qdrant.VectorSize)
	assert.Equal(t, 10*time.Second, cfg.Cohere.Timeout)
}

func TestLoad_BadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COHERE_TIMEOUT", "not-a-duration")

	_, err := Load(nopLogger{})

	require.Error(t, err)
}
