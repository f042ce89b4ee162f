package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/internal/repository/pgdb/converter"
	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/lumina-ai/rag-backend/pkg/tr"
)

// RecordRepo реализует реестр сохранённых записей поверх PostgreSQL.
type RecordRepo struct {
	pool *pgxpool.Pool
	conv converter.RecordConverter
}

func NewRecordRepo(pool *pgxpool.Pool, conv converter.RecordConverter) *RecordRepo {
	return &RecordRepo{
		pool: pool,
		conv: conv,
	}
}

// CreateBatch вставляет строки реестра для батча записей в рамках
// транзакции из контекста. Батч вставляется одним pgx.Batch.
func (r *RecordRepo) CreateBatch(ctx context.Context, entries []*domain.RecordEntry) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO records (id, collection, content_hash, text_length)
		VALUES ($1, $2, $3, $4);
	`

	batch := &pgx.Batch{}
	for _, entry := range entries {
		model := r.conv.ToModel(entry)
		batch.Queue(query, model.ID, model.Collection, model.ContentHash, model.TextLength)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// GetRecords возвращает строки реестра по идентификаторам записей.
func (r *RecordRepo) GetRecords(ctx context.Context, ids []string) ([]usecase.RecordInfo, error) {
	query := `
		SELECT id, collection, content_hash, text_length, created_at
		FROM records
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]usecase.RecordInfo, 0)
	for rows.Next() {
		var record usecase.RecordInfo
		if err := rows.Scan(&record.ID, &record.Collection, &record.ContentHash, &record.TextLength, &record.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Delete удаляет строки реестра по идентификаторам в рамках транзакции из контекста.
func (r *RecordRepo) Delete(ctx context.Context, ids []string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE id = ANY($1)`, ids); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Ping проверяет доступность реестра.
func (r *RecordRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// postgresDuplicate определяет нарушение уникального ограничения (код 23505).
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
