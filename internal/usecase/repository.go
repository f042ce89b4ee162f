package usecase

import (
	"context"

	"github.com/lumina-ai/rag-backend/internal/domain"
)

type VectorRepository interface {
	CollectionExists(ctx context.Context) (bool, error)
	CreateCollection(ctx context.Context) error
	Upsert(ctx context.Context, vectors []domain.Embedding) error
	Search(ctx context.Context, vector []float32, limit uint64) ([]domain.QueryResult, error)
	Count(ctx context.Context) (uint64, error)
	Delete(ctx context.Context, ids []string) error
}

type RegistryRepository interface {
	CreateBatch(ctx context.Context, entries []*domain.RecordEntry) error
	GetRecords(ctx context.Context, ids []string) ([]RecordInfo, error)
	Delete(ctx context.Context, ids []string) error
	Ping(ctx context.Context) error
}

type CacheRepository interface {
	GetRecords(ctx context.Context, ids []string) (map[string]RecordInfo, error)
	SetRecords(ctx context.Context, records []RecordInfo) error
	DeleteRecords(ctx context.Context, ids []string) error
	Ping(ctx context.Context) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ArchiveRepository interface {
	Put(ctx context.Context, recordID, text string) (string, error)
	Delete(ctx context.Context, recordID string) error
}
