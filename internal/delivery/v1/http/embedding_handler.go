package http

import (
	"net/http"
	"time"

	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/logger"
)

const defaultTopK = 5

type EmbeddingHandler struct {
	embeddingUsecase usecase.EmbeddingUC
	logger           logger.Logger
}

func NewEmbeddingHandler(embeddingUsecase usecase.EmbeddingUC, logger logger.Logger) *EmbeddingHandler {
	return &EmbeddingHandler{embeddingUsecase: embeddingUsecase, logger: logger}
}

type SaveTextRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type SaveTextsRequest struct {
	Texts        []string         `json:"texts"`
	MetadataList []map[string]any `json:"metadata_list"`
}

type SearchRequest struct {
	QueryText string `json:"query_text"`
	TopK      *int   `json:"top_k"`
}

type DeleteRecordsRequest struct {
	IDs []string `json:"ids"`
}

type GetRecordsRequest struct {
	IDs []string `json:"ids"`
}

type SaveTextResponse struct {
	ID string `json:"id"`
}

type SaveTextsResponse struct {
	IDs []string `json:"ids"`
}

type SearchResult struct {
	ID      string         `json:"id"`
	Score   float32        `json:"score"`
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type RecordInfoResponse struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	ContentHash string    `json:"content_hash"`
	TextLength  int       `json:"text_length"`
	CreatedAt   time.Time `json:"created_at"`
}

type GetRecordsResponse struct {
	Records  []RecordInfoResponse `json:"records"`
	NotFound []string             `json:"not_found"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

type HealthResponse struct {
	Status           string  `json:"status"`
	CollectionExists bool    `json:"collection_exists"`
	RecordCount      *uint64 `json:"record_count,omitempty"`
	Detail           string  `json:"detail,omitempty"`
}

// saveText
//
//	@Summary		Сохранение одного текста
//	@Description	Векторизует текст и сохраняет его эмбеддинг с метаданными
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SaveTextRequest	true	"Текст и метаданные"
//	@Success		201		{object}	SaveTextResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		429		{object}	ErrorResponse	"Лимит провайдера"
//	@Router			/embeddings/text [post]
func (h *EmbeddingHandler) saveText(w http.ResponseWriter, r *http.Request) {
	var req SaveTextRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.embeddingUsecase.SaveText(r.Context(), &usecase.SaveTextReq{
		Text:     req.Text,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.logger.Warnf("save text failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, SaveTextResponse{ID: res.ID})
}

// saveTexts
//
//	@Summary		Батчевое сохранение текстов
//	@Description	Векторизует батч текстов одним обращением к провайдеру и сохраняет все эмбеддинги атомарно
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SaveTextsRequest	true	"Тексты и список метаданных"
//	@Success		201		{object}	SaveTextsResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		429		{object}	ErrorResponse	"Лимит провайдера"
//	@Router			/embeddings/texts [post]
func (h *EmbeddingHandler) saveTexts(w http.ResponseWriter, r *http.Request) {
	var req SaveTextsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.embeddingUsecase.SaveTexts(r.Context(), &usecase.SaveTextsReq{
		Texts:        req.Texts,
		MetadataList: req.MetadataList,
	})
	if err != nil {
		h.logger.Warnf("save texts failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, SaveTextsResponse{IDs: res.IDs})
}

// search
//
//	@Summary		Поиск похожих текстов
//	@Description	Векторизует запрос и возвращает top_k ближайших записей по косинусной близости
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchRequest	true	"Поисковый запрос"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/embeddings/search [post]
func (h *EmbeddingHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	topK := defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	res, err := h.embeddingUsecase.Retrieve(r.Context(), &usecase.RetrieveReq{
		Query: req.QueryText,
		TopK:  topK,
	})
	if err != nil {
		h.logger.Warnf("search failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	results := make([]SearchResult, 0, len(res.Results))
	for _, qr := range res.Results {
		results = append(results, SearchResult{
			ID:      qr.ID,
			Score:   qr.Score,
			Text:    qr.Text,
			Payload: qr.Payload,
		})
	}

	WriteSuccess(w, http.StatusOK, SearchResponse{Results: results})
}

// getRecords
//
//	@Summary		Сводки реестра по ID записей
//	@Description	Возвращает сведения реестра по списку идентификаторов, отдельно перечисляя ненайденные
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GetRecordsRequest	true	"Идентификаторы записей"
//	@Success		200		{object}	GetRecordsResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/embeddings/records/query [post]
func (h *EmbeddingHandler) getRecords(w http.ResponseWriter, r *http.Request) {
	var req GetRecordsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.embeddingUsecase.GetRecords(r.Context(), &usecase.GetRecordsReq{IDs: req.IDs})
	if err != nil {
		h.logger.Warnf("get records failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	records := make([]RecordInfoResponse, 0, len(res.Records))
	for _, rec := range res.Records {
		records = append(records, RecordInfoResponse{
			ID:          rec.ID,
			Collection:  rec.Collection,
			ContentHash: rec.ContentHash,
			TextLength:  rec.TextLength,
			CreatedAt:   rec.CreatedAt,
		})
	}

	WriteSuccess(w, http.StatusOK, GetRecordsResponse{
		Records:  records,
		NotFound: res.NotFoundRecords,
	})
}

// deleteRecords
//
//	@Summary		Удаление записей
//	@Description	Удаляет записи из векторного хранилища и реестра по списку идентификаторов
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			request	body	DeleteRecordsRequest	true	"Идентификаторы записей"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/embeddings/records [delete]
func (h *EmbeddingHandler) deleteRecords(w http.ResponseWriter, r *http.Request) {
	var req DeleteRecordsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad request: %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	if err := h.embeddingUsecase.DeleteRecords(r.Context(), &usecase.DeleteRecordsReq{IDs: req.IDs}); err != nil {
		h.logger.Warnf("delete records failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// count
//
//	@Summary		Число записей
//	@Description	Возвращает число точек в коллекции векторного хранилища
//	@Tags			embeddings
//	@Produce		json
//	@Success		200	{object}	CountResponse
//	@Failure		503	{object}	ErrorResponse	"Хранилище недоступно"
//	@Router			/embeddings/count [get]
func (h *EmbeddingHandler) count(w http.ResponseWriter, r *http.Request) {
	n, err := h.embeddingUsecase.CountRecords(r.Context())
	if err != nil {
		h.logger.Warnf("count records failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CountResponse{Count: n})
}

// health
//
//	@Summary		Состояние сервиса
//	@Description	Диагностический срез: доступность коллекции и число записей. Всегда отвечает 200
//	@Tags			embeddings
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/embeddings/health [get]
func (h *EmbeddingHandler) health(w http.ResponseWriter, r *http.Request) {
	res := h.embeddingUsecase.CheckHealth(r.Context())

	WriteSuccess(w, http.StatusOK, HealthResponse{
		Status:           string(res.Status),
		CollectionExists: res.CollectionExists,
		RecordCount:      res.RecordCount,
		Detail:           res.Detail,
	})
}
