package converter

import (
	"time"

	"github.com/lumina-ai/rag-backend/internal/usecase"
)

// RecordModel представляет запись таблицы records в PostgreSQL.
type RecordModel struct {
	ID          string    `db:"id"`
	Collection  string    `db:"collection"`
	ContentHash string    `db:"content_hash"`
	TextLength  int       `db:"text_length"`
	CreatedAt   time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64                `db:"id"`
	EventID     string               `db:"event_id"`
	EventType   string               `db:"event_type"`
	AggregateID string               `db:"aggregate_id"`
	Payload     []byte               `db:"payload"`
	Status      usecase.OutboxStatus `db:"status"`
	CreatedAt   time.Time            `db:"created_at"`
	ProcessedAt *time.Time           `db:"processed_at"`
}
