package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayload_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

	payload := NewPayload("hello world", now, nil)

	assert.Equal(t, "hello world", payload["text"])
	assert.Equal(t, now.Format(time.RFC3339Nano), payload["created_at"])
}

func TestNewPayload_CallerMetadataWins(t *testing.T) {
	now := time.Now()
	metadata := map[string]any{
		"text":       "caller text",
		"created_at": "2020-01-01T00:00:00Z",
		"source":     "unit",
	}

	payload := NewPayload("original text", now, metadata)

	assert.Equal(t, "caller text", payload["text"])
	assert.Equal(t, "2020-01-01T00:00:00Z", payload["created_at"])
	assert.Equal(t, "unit", payload["source"])
}

func TestNewPayload_DoesNotMutateMetadata(t *testing.T) {
	metadata := map[string]any{"source": "unit"}

	payload := NewPayload("text", time.Now(), metadata)
	require.Contains(t, payload, "text")

	assert.NotContains(t, metadata, "text")
	assert.NotContains(t, metadata, "created_at")
}

func TestPayload_Text(t *testing.T) {
	assert.Equal(t, "abc", Payload{"text": "abc"}.Text())
	assert.Equal(t, "", Payload{}.Text())
	assert.Equal(t, "", Payload{"text": 42}.Text())
	assert.Equal(t, "", Payload(nil).Text())
}

func TestNewQueryResult_ExtractsText(t *testing.T) {
	res := NewQueryResult("id-1", 0.93, Payload{"text": "stored text"})

	assert.Equal(t, "id-1", res.ID)
	assert.InDelta(t, 0.93, res.Score, 1e-6)
	assert.Equal(t, "stored text", res.Text)
}

func TestNewQueryResult_MissingText(t *testing.T) {
	res := NewQueryResult("id-2", 0.5, Payload{"source": "unit"})

	assert.Equal(t, "", res.Text)
	assert.Equal(t, Payload{"source": "unit"}, res.Payload)
}
