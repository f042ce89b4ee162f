package usecase

import (
	"time"

	"github.com/lumina-ai/rag-backend/internal/domain"
)

// EMBEDDING USECASE

// SaveTextReq — запрос на сохранение одного текста.
type SaveTextReq struct {
	Text     string
	Metadata map[string]any
}

type SaveTextRes struct {
	ID string
}

// SaveTextsReq — батчевый запрос: все тексты кодируются одним обращением к провайдеру.
// MetadataList либо nil, либо той же длины, что Texts.
type SaveTextsReq struct {
	Texts        []string
	MetadataList []map[string]any
}

type SaveTextsRes struct {
	IDs []string
}

// RetrieveReq — запрос поиска по близости. TopK в диапазоне 1..100.
type RetrieveReq struct {
	Query string
	TopK  int
}

type RetrieveRes struct {
	Results []domain.QueryResult
}

type DeleteRecordsReq struct {
	IDs []string
}

// GetRecordsReq — запрос сведений реестра по идентификаторам записей.
type GetRecordsReq struct {
	IDs []string
}

type GetRecordsRes struct {
	Records         []RecordInfo
	NotFoundRecords []string
}

// RecordInfo — DTO строки реестра для внешнего использования.
type RecordInfo struct {
	ID          string
	Collection  string
	ContentHash string
	TextLength  int
	CreatedAt   time.Time
}

// HealthRes — диагностический срез состояния хранилищ. Никогда не ошибка.
type HealthRes struct {
	Status           domain.HealthStatus
	CollectionExists bool
	RecordCount      *uint64 // nil, если счётчик недоступен
	Detail           string
}

// INFRASTRUCTURE

type ArchiveItem struct {
	ID   string
	Text string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string // id первой записи батча, используется как ключ партиционирования
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewSaveTextRes(id string) *SaveTextRes {
	return &SaveTextRes{ID: id}
}

func NewSaveTextsRes(ids []string) *SaveTextsRes {
	return &SaveTextsRes{IDs: ids}
}

func NewRetrieveRes(results []domain.QueryResult) *RetrieveRes {
	return &RetrieveRes{Results: results}
}

func NewRecordInfo(id, collection, contentHash string, textLength int, createdAt time.Time) RecordInfo {
	return RecordInfo{
		ID:          id,
		Collection:  collection,
		ContentHash: contentHash,
		TextLength:  textLength,
		CreatedAt:   createdAt,
	}
}

func NewGetRecordsRes(records []RecordInfo, notFound []string) *GetRecordsRes {
	return &GetRecordsRes{
		Records:         records,
		NotFoundRecords: notFound,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID, eventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
	}
}

func NewArchiveItem(id, text string) ArchiveItem {
	return ArchiveItem{ID: id, Text: text}
}
