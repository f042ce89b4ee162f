package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type stubUC struct {
	saveTextRes  *usecase.SaveTextRes
	saveTextsRes *usecase.SaveTextsRes
	retrieveReq  *usecase.RetrieveReq
	retrieveRes  *usecase.RetrieveRes
	countRes     uint64
	healthRes    *usecase.HealthRes
	err          error
}

func (s *stubUC) SaveText(ctx context.Context, req *usecase.SaveTextReq) (*usecase.SaveTextRes, error) {
	return s.saveTextRes, s.err
}

func (s *stubUC) SaveTexts(ctx context.Context, req *usecase.SaveTextsReq) (*usecase.SaveTextsRes, error) {
	return s.saveTextsRes, s.err
}

func (s *stubUC) Retrieve(ctx context.Context, req *usecase.RetrieveReq) (*usecase.RetrieveRes, error) {
	s.retrieveReq = req
	return s.retrieveRes, s.err
}

func (s *stubUC) CountRecords(ctx context.Context) (uint64, error) {
	return s.countRes, s.err
}

func (s *stubUC) DeleteRecords(ctx context.Context, req *usecase.DeleteRecordsReq) error {
	return s.err
}

func (s *stubUC) GetRecords(ctx context.Context, req *usecase.GetRecordsReq) (*usecase.GetRecordsRes, error) {
	return usecase.NewGetRecordsRes(nil, req.IDs), s.err
}

func (s *stubUC) CheckHealth(ctx context.Context) *usecase.HealthRes {
	return s.healthRes
}

func doRequest(handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSaveText_Created(t *testing.T) {
	uc := &stubUC{saveTextRes: &usecase.SaveTextRes{ID: "id-1"}}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.saveText, http.MethodPost, `{"text":"hello","metadata":{"source":"unit"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var res SaveTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "id-1", res.ID)
}

func TestSaveText_BadJSON(t *testing.T) {
	h := NewEmbeddingHandler(&stubUC{}, nopLogger{})

	rec := doRequest(h.saveText, http.MethodPost, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveText_ValidationError(t *testing.T) {
	uc := &stubUC{err: e.ErrEmptyText}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.saveText, http.MethodPost, `{"text":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSaveTexts_RateLimited(t *testing.T) {
	uc := &stubUC{err: e.ErrRateLimited}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.saveTexts, http.MethodPost, `{"texts":["a","b"]}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSearch_DefaultTopK(t *testing.T) {
	uc := &stubUC{retrieveRes: &usecase.RetrieveRes{}}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.search, http.MethodPost, `{"query_text":"find me"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.retrieveReq)
	assert.Equal(t, defaultTopK, uc.retrieveReq.TopK)
}

func TestSearch_ExplicitTopK(t *testing.T) {
	uc := &stubUC{retrieveRes: &usecase.RetrieveRes{}}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.search, http.MethodPost, `{"query_text":"find me","top_k":25}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, uc.retrieveReq.TopK)
}

func TestSearch_MapsResults(t *testing.T) {
	uc := &stubUC{retrieveRes: &usecase.RetrieveRes{
		Results: []domain.QueryResult{
			{ID: "id-1", Score: 0.9, Text: "closest", Payload: domain.Payload{"text": "closest"}},
		},
	}}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.search, http.MethodPost, `{"query_text":"q"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var res SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "id-1", res.Results[0].ID)
	assert.Equal(t, "closest", res.Results[0].Text)
}

func TestDeleteRecords_NoContent(t *testing.T) {
	h := NewEmbeddingHandler(&stubUC{}, nopLogger{})

	rec := doRequest(h.deleteRecords, http.MethodDelete, `{"ids":["id-1"]}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCount_OK(t *testing.T) {
	uc := &stubUC{countRes: 7}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.count, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var res CountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uint64(7), res.Count)
}

func TestCount_StoreUnavailable(t *testing.T) {
	uc := &stubUC{err: e.ErrCollectionUnavailable}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.count, http.MethodGet, "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth_AlwaysOK(t *testing.T) {
	uc := &stubUC{healthRes: &usecase.HealthRes{
		Status: domain.StatusUnhealthy,
		Detail: "vector store unreachable",
	}}
	h := NewEmbeddingHandler(uc, nopLogger{})

	rec := doRequest(h.health, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "unhealthy", res.Status)
	assert.NotEmpty(t, res.Detail)
}
