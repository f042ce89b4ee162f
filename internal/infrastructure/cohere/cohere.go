package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/jimlawless/whereami"
	"github.com/lumina-ai/rag-backend/internal/cfg"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/lumina-ai/rag-backend/pkg/logger"
)

// Client — адаптер провайдера эмбеддингов Cohere поверх его REST API.
// Разбивает большие батчи на чанки и выполняет их параллельно с ограничением
// конкурентности, сохраняя исходный порядок текстов. Повторов не делает:
// решение о повторе принимает вызывающая сторона.
type Client struct {
	httpClient *http.Client
	cfg        *cfg.CohereCfg
	logger     logger.Logger
}

func NewClient(cfg *cfg.CohereCfg, logger logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message"`
}

// Embed векторизует тексты, возвращая ровно один вектор на текст в исходном порядке
func (c *Client) Embed(ctx context.Context, texts []string, purpose domain.EmbedPurpose) ([][]float32, error) {
	const op = "cohere.Embed"

	if len(texts) == 0 {
		return nil, e.Wrap(op, e.ErrNoTexts)
	}

	chunks := chunkTexts(texts, c.cfg.MaxBatchSize)

	vectors := make([][][]float32, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, c.cfg.MaxConcurrent)

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vectors[i], errs[i] = c.embedChunk(ctx, chunk, purpose)
		}()
	}
	wg.Wait()

	result := make([][]float32, 0, len(texts))
	for i, err := range errs {
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		result = append(result, vectors[i]...)
	}

	if len(result) != len(texts) {
		return nil, e.Wrap(op, fmt.Errorf("%w: want %d, got %d", e.ErrVectorCountMismatch, len(texts), len(result)))
	}

	return result, nil
}

// embedChunk выполняет один запрос embed к провайдеру
func (c *Client) embedChunk(ctx context.Context, texts []string, purpose domain.EmbedPurpose) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{
		Texts:     texts,
		Model:     c.cfg.Model,
		InputType: string(purpose),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/embed", bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", e.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", e.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, data)
	}

	var embedRes embedResponse
	if err := json.Unmarshal(data, &embedRes); err != nil {
		return nil, fmt.Errorf("%w: bad provider response: %v", e.ErrContractViolation, err)
	}

	if len(embedRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: want %d, got %d", e.ErrVectorCountMismatch, len(texts), len(embedRes.Embeddings))
	}

	return embedRes.Embeddings, nil
}

// statusError переводит HTTP-статус провайдера в ошибку ядра
func (c *Client) statusError(code int, body []byte) error {
	var embedRes embedResponse
	msg := ""
	if err := json.Unmarshal(body, &embedRes); err == nil {
		msg = embedRes.Message
	}

	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", e.ErrRateLimited, msg)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: provider status %d: %s", e.ErrTimeout, code, msg)
	default:
		return fmt.Errorf("%w: provider status %d: %s", e.ErrProviderFailure, code, msg)
	}
}

// chunkTexts режет входной батч на чанки не больше maxBatchSize
func chunkTexts(texts []string, maxBatchSize int) [][]string {
	if maxBatchSize <= 0 || len(texts) <= maxBatchSize {
		return [][]string{texts}
	}

	chunks := make([][]string, 0, (len(texts)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, texts[start:end])
	}

	return chunks
}
