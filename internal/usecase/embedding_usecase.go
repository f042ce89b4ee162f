package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/lumina-ai/rag-backend/pkg/logger"
)

const (
	maxTopK           = 100
	eventTypeIngested = "record_ingested"
	eventTypeDeleted  = "record_deleted"
)

// TxBeginner открывает транзакцию PostgreSQL. Реализуется pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EmbeddingUseCase реализует бизнес-логику ингестии и поиска эмбеддингов.
// Между вызовами не хранит состояния, кроме кэша готовности коллекции;
// безопасен для конкурентного использования.
type EmbeddingUseCase struct {
	vectorRepo   VectorRepository
	registryRepo RegistryRepository
	cacheRepo    CacheRepository
	outboxRepo   OutboxRepository
	txBeginner   TxBeginner
	embedder     Embedder
	archive      ArchiveInfra
	logger       logger.Logger

	collectionName string
	vectorSize     uint64

	// Кэш готовности коллекции. Сбрасывается при обнаружении потери
	// связности, чтобы следующий вызов перепроверил, а не доверял
	// устаревшему состоянию.
	readyMu sync.Mutex
	ready   bool
}

func NewEmbeddingUC(
	vectorRepo VectorRepository,
	registryRepo RegistryRepository,
	cacheRepo CacheRepository,
	outboxRepo OutboxRepository,
	txBeginner TxBeginner,
	embedder Embedder,
	archive ArchiveInfra,
	logger logger.Logger,
	collectionName string,
	vectorSize uint64,
) *EmbeddingUseCase {
	return &EmbeddingUseCase{
		vectorRepo:     vectorRepo,
		registryRepo:   registryRepo,
		cacheRepo:      cacheRepo,
		outboxRepo:     outboxRepo,
		txBeginner:     txBeginner,
		embedder:       embedder,
		archive:        archive,
		logger:         logger,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}
}

// SaveText сохраняет один текст. Частный случай SaveTexts.
func (u *EmbeddingUseCase) SaveText(ctx context.Context, req *SaveTextReq) (*SaveTextRes, error) {
	const op = "EmbeddingUseCase.SaveText"

	var metadataList []map[string]any
	if req.Metadata != nil {
		metadataList = []map[string]any{req.Metadata}
	}

	res, err := u.SaveTexts(ctx, &SaveTextsReq{
		Texts:        []string{req.Text},
		MetadataList: metadataList,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewSaveTextRes(res.IDs[0]), nil
}

// SaveTexts сохраняет батч текстов: один вызов провайдера эмбеддингов,
// один батчевый upsert. Либо сохраняются все записи, либо ни одной.
func (u *EmbeddingUseCase) SaveTexts(ctx context.Context, req *SaveTextsReq) (*SaveTextsRes, error) {
	const op = "EmbeddingUseCase.SaveTexts"

	if err := u.validateSaveTexts(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.ensureReady(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	vectors, err := u.embedder.Embed(ctx, req.Texts, domain.PurposeDocument)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.validateVectors(vectors, len(req.Texts)); err != nil {
		return nil, e.Wrap(op, err)
	}

	now := time.Now()
	ids := make([]string, len(req.Texts))
	embeddings := make([]domain.Embedding, 0, len(req.Texts))
	entries := make([]*domain.RecordEntry, 0, len(req.Texts))
	for i, text := range req.Texts {
		ids[i] = uuid.NewString()

		var metadata map[string]any
		if req.MetadataList != nil {
			metadata = req.MetadataList[i]
		}

		payload := domain.NewPayload(text, now, metadata)
		embeddings = append(embeddings, *domain.NewEmbedding(ids[i], vectors[i], payload))
		entries = append(entries, domain.NewRecordEntry(ids[i], u.collectionName, contentHash(text), len(text)))
	}

	tx, err := u.txBeginner.Begin(ctx)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				u.logger.Warnf("registry tx rollback failed: %v", rbErr)
			}
		}
	}()
	txCtx := context.WithValue(ctx, "tx", tx)

	if err := u.registryRepo.CreateBatch(txCtx, entries); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}

	if err := u.createIngestEvent(txCtx, ids); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Upsert в Qdrant до коммита реестра: при отказе хранилища
	// транзакция откатывается и следов батча не остаётся нигде.
	if err := u.vectorRepo.Upsert(ctx, embeddings); err != nil {
		u.invalidateOnConnErr(err)
		return nil, e.Wrap(op, storageErr(e.ErrStorageWrite, err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}
	committed = true

	u.archiveBatch(ids, req.Texts)

	u.logger.Infof("saved %d embedding(s) to collection %s", len(ids), u.collectionName)
	return NewSaveTextsRes(ids), nil
}

// Retrieve выполняет поиск ближайших записей по текстовому запросу.
// Пустой срез — валидный результат пустой коллекции, а не ошибка.
func (u *EmbeddingUseCase) Retrieve(ctx context.Context, req *RetrieveReq) (*RetrieveRes, error) {
	const op = "EmbeddingUseCase.Retrieve"

	if strings.TrimSpace(req.Query) == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	if req.TopK < 1 || req.TopK > maxTopK {
		return nil, e.Wrap(op, e.ErrTopKOutOfRange)
	}

	if err := u.ensureReady(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	vectors, err := u.embedder.Embed(ctx, []string{req.Query}, domain.PurposeQuery)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.validateVectors(vectors, 1); err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := u.vectorRepo.Search(ctx, vectors[0], uint64(req.TopK))
	if err != nil {
		u.invalidateOnConnErr(err)
		return nil, e.Wrap(op, storageErr(e.ErrStorageRead, err))
	}

	return NewRetrieveRes(results), nil
}

// CountRecords возвращает число точек в коллекции Qdrant.
func (u *EmbeddingUseCase) CountRecords(ctx context.Context) (uint64, error) {
	const op = "EmbeddingUseCase.CountRecords"

	if err := u.ensureReady(ctx); err != nil {
		return 0, e.Wrap(op, err)
	}

	count, err := u.vectorRepo.Count(ctx)
	if err != nil {
		u.invalidateOnConnErr(err)
		return 0, e.Wrap(op, storageErr(e.ErrStorageRead, err))
	}

	return count, nil
}

// DeleteRecords удаляет записи по идентификаторам из Qdrant и реестра.
func (u *EmbeddingUseCase) DeleteRecords(ctx context.Context, req *DeleteRecordsReq) error {
	const op = "EmbeddingUseCase.DeleteRecords"

	if len(req.IDs) == 0 {
		return e.Wrap(op, e.ErrNoIDs)
	}

	if err := u.ensureReady(ctx); err != nil {
		return e.Wrap(op, err)
	}

	tx, err := u.txBeginner.Begin(ctx)
	if err != nil {
		return e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				u.logger.Warnf("registry tx rollback failed: %v", rbErr)
			}
		}
	}()
	txCtx := context.WithValue(ctx, "tx", tx)

	if err := u.registryRepo.Delete(txCtx, req.IDs); err != nil {
		return e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}

	if err := u.createDeleteEvent(txCtx, req.IDs); err != nil {
		return e.Wrap(op, err)
	}

	if err := u.vectorRepo.Delete(ctx, req.IDs); err != nil {
		u.invalidateOnConnErr(err)
		return e.Wrap(op, storageErr(e.ErrStorageWrite, err))
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStorageWrite, err))
	}
	committed = true

	if err := u.cacheRepo.DeleteRecords(ctx, req.IDs); err != nil {
		u.logger.Warnf("failed to delete records from cache: %v", e.Wrap(op, err))
	}

	u.archive.RemoveArchived(req.IDs)

	return nil
}

// GetRecords возвращает сведения реестра по идентификаторам записей.
func (u *EmbeddingUseCase) GetRecords(ctx context.Context, req *GetRecordsReq) (*GetRecordsRes, error) {
	const op = "EmbeddingUseCase.GetRecords"

	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.ErrNoIDs)
	}

	// Поиск записей в кэше
	cachedMap, err := u.cacheRepo.GetRecords(ctx, req.IDs)
	var nonCacheable []string
	if err != nil {
		nonCacheable = append(nonCacheable, req.IDs...)
	} else {
		for _, id := range req.IDs {
			if _, ok := cachedMap[id]; !ok {
				nonCacheable = append(nonCacheable, id)
			}
		}
	}

	// Получение промахов из реестра
	var recordsFromDB []RecordInfo
	if len(nonCacheable) > 0 {
		recordsFromDB, err = u.registryRepo.GetRecords(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, storageErr(e.ErrStorageRead, err))
		}

		// Фоновое наполнение кэша
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := u.cacheRepo.SetRecords(bgCtx, recordsFromDB); err != nil {
				u.logger.Warnf("Failed to cache records in background: %v", e.Wrap(op, err))
			}
		}()
	}

	dbMap := make(map[string]RecordInfo, len(recordsFromDB))
	for _, record := range recordsFromDB {
		dbMap[record.ID] = record
	}

	// Формирование результата в порядке запрошенных идентификаторов
	result := make([]RecordInfo, 0, len(req.IDs))
	notFound := make([]string, 0)
	for _, id := range req.IDs {
		if record, ok := cachedMap[id]; ok {
			result = append(result, record)
		} else if record, ok := dbMap[id]; ok {
			result = append(result, record)
		} else {
			notFound = append(notFound, id)
		}
	}

	return NewGetRecordsRes(result, notFound), nil
}

// CheckHealth сообщает состояние хранилищ. Никогда не возвращает ошибку:
// любые отказы превращаются в статус и человекочитаемый detail.
func (u *EmbeddingUseCase) CheckHealth(ctx context.Context) *HealthRes {
	exists, err := u.vectorRepo.CollectionExists(ctx)
	if err != nil {
		u.invalidateOnConnErr(err)
		return &HealthRes{
			Status: domain.StatusUnhealthy,
			Detail: fmt.Sprintf("vector store unreachable: %v", err),
		}
	}

	res := &HealthRes{
		Status:           domain.StatusHealthy,
		CollectionExists: exists,
	}

	var details []string
	if !exists {
		res.Status = domain.StatusDegraded
		details = append(details, fmt.Sprintf("collection %s does not exist", u.collectionName))
	} else {
		count, err := u.vectorRepo.Count(ctx)
		if err != nil {
			res.Status = domain.StatusDegraded
			details = append(details, fmt.Sprintf("record count unavailable: %v", err))
		} else {
			res.RecordCount = &count
		}
	}

	if err := u.registryRepo.Ping(ctx); err != nil {
		res.Status = domain.StatusDegraded
		details = append(details, fmt.Sprintf("record registry unreachable: %v", err))
	}

	if err := u.cacheRepo.Ping(ctx); err != nil {
		res.Status = domain.StatusDegraded
		details = append(details, fmt.Sprintf("cache unreachable: %v", err))
	}

	res.Detail = strings.Join(details, "; ")
	return res
}

// ensureReady гарантирует существование коллекции перед чтением/записью.
// Идемпотентна; результат кэшируется на время жизни процесса.
// Существующая коллекция принимается как есть, без сверки параметров.
func (u *EmbeddingUseCase) ensureReady(ctx context.Context) error {
	u.readyMu.Lock()
	defer u.readyMu.Unlock()

	if u.ready {
		return nil
	}

	exists, err := u.vectorRepo.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrCollectionUnavailable, err)
	}

	if !exists {
		if err := u.vectorRepo.CreateCollection(ctx); err != nil {
			return fmt.Errorf("%w: %v", e.ErrCollectionUnavailable, err)
		}
		u.logger.Infof("created collection %s (vector size %d, cosine)", u.collectionName, u.vectorSize)
	}

	u.ready = true
	return nil
}

// invalidateOnConnErr сбрасывает кэш готовности при ошибках связности,
// чтобы следующий вызов заново подтвердил существование коллекции.
func (u *EmbeddingUseCase) invalidateOnConnErr(err error) {
	if !isConnectivityError(err) {
		return
	}

	u.readyMu.Lock()
	u.ready = false
	u.readyMu.Unlock()
	u.logger.Warnf("connectivity failure detected, collection readiness invalidated: %v", err)
}

func (u *EmbeddingUseCase) validateSaveTexts(req *SaveTextsReq) error {
	if len(req.Texts) == 0 {
		return e.ErrNoTexts
	}

	for _, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			return e.ErrEmptyText
		}
	}

	if req.MetadataList != nil && len(req.MetadataList) != len(req.Texts) {
		return e.ErrMetadataMismatch
	}

	return nil
}

// validateVectors проверяет контракт провайдера: ровно один вектор на текст,
// каждый — сконфигурированной размерности. Нарушение фатально,
// обрезка или дополнение вектора не выполняются никогда.
func (u *EmbeddingUseCase) validateVectors(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d, want %d", e.ErrVectorCountMismatch, len(vectors), want)
	}

	for i, vector := range vectors {
		if uint64(len(vector)) != u.vectorSize {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", e.ErrVectorSizeMismatch, i, len(vector), u.vectorSize)
		}
	}

	return nil
}

type ingestEventPayload struct {
	EventID    string   `json:"event_id"`
	EventType  string   `json:"event_type"`
	Collection string   `json:"collection"`
	RecordIDs  []string `json:"record_ids"`
	OccurredAt int64    `json:"occurred_at"`
}

func (u *EmbeddingUseCase) createIngestEvent(txCtx context.Context, ids []string) error {
	return u.createOutboxEvent(txCtx, eventTypeIngested, ids)
}

func (u *EmbeddingUseCase) createDeleteEvent(txCtx context.Context, ids []string) error {
	return u.createOutboxEvent(txCtx, eventTypeDeleted, ids)
}

func (u *EmbeddingUseCase) createOutboxEvent(txCtx context.Context, eventType string, ids []string) error {
	eventID := uuid.NewString()
	payload, err := json.Marshal(ingestEventPayload{
		EventID:    eventID,
		EventType:  eventType,
		Collection: u.collectionName,
		RecordIDs:  ids,
		OccurredAt: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrStorageWrite, err)
	}

	if _, err := u.outboxRepo.Create(txCtx, NewOutboxEvent(eventID, eventType, ids[0], payload)); err != nil {
		return fmt.Errorf("%w: %v", e.ErrStorageWrite, err)
	}

	return nil
}

// archiveBatch отправляет тексты в фоновый архивный сток.
func (u *EmbeddingUseCase) archiveBatch(ids []string, texts []string) {
	items := make([]ArchiveItem, 0, len(ids))
	for i, id := range ids {
		items = append(items, NewArchiveItem(id, texts[i]))
	}
	u.archive.ArchiveTexts(items)
}

// storageErr классифицирует ошибку хранилища: истёкший дедлайн — это
// TimeoutError, остальное — отказ чтения/записи заданного рода.
func storageErr(kind error, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", e.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	connectivityPhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"connection reset",
		"broken pipe",
		"no such host",
		"unavailable",
	}
	for _, phrase := range connectivityPhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
