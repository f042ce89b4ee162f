package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", e.ErrEmptyText, http.StatusBadRequest},
		{"not json", e.ErrNotJSON, http.StatusBadRequest},
		{"top_k out of range", e.ErrTopKOutOfRange, http.StatusBadRequest},
		{"rate limited", fmt.Errorf("op: %w", e.ErrRateLimited), http.StatusTooManyRequests},
		{"provider failure", e.ErrProviderFailure, http.StatusBadGateway},
		{"contract violation", e.ErrVectorSizeMismatch, http.StatusBadGateway},
		{"timeout", e.ErrTimeout, http.StatusGatewayTimeout},
		{"collection unavailable", e.ErrCollectionUnavailable, http.StatusServiceUnavailable},
		{"storage write", fmt.Errorf("op: %w", e.ErrStorageWrite), http.StatusServiceUnavailable},
		{"storage read", e.ErrStorageRead, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestToHTTPResponse_HidesInternalDetails(t *testing.T) {
	_, msg := ToHTTPResponse(fmt.Errorf("pgx: connection to 10.0.0.5 failed"))

	assert.Equal(t, e.ErrInternalServerError.Error(), msg)
}
