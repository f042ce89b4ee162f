//go:generate goverter gen github.com/lumina-ai/rag-backend/internal/repository/pgdb/converter

package converter

import (
	"time"

	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/internal/usecase"
)

// RecordConverter преобразует строки реестра между domain и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
type RecordConverter interface {
	ToModel(entity *domain.RecordEntry) *RecordModel
	ToEntity(model *RecordModel) *domain.RecordEntry
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

func ConvertPointerTime(t *time.Time) *time.Time {
	return t
}

func ConvertTime(t time.Time) time.Time {
	return t
}
