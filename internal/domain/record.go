package domain

import "time"

// RecordEntry — строка реестра сохранённых записей в PostgreSQL.
// Реестр — вторичный индекс для выборки списков и аудита;
// источником истины по векторам остаётся Qdrant.
type RecordEntry struct {
	ID          string // совпадает с id точки в Qdrant
	Collection  string
	ContentHash string // sha256 исходного текста
	TextLength  int
	CreatedAt   time.Time
}

func NewRecordEntry(id, collection, contentHash string, textLength int) *RecordEntry {
	return &RecordEntry{
		ID:          id,
		Collection:  collection,
		ContentHash: contentHash,
		TextLength:  textLength,
	}
}
