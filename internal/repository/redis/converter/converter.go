//go:generate goverter gen github.com/lumina-ai/rag-backend/internal/repository/redis/converter

package converter

import (
	"time"

	"github.com/lumina-ai/rag-backend/internal/usecase"
)

// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
type RecordInfoConverter interface {
	ToRedisModel(entity *usecase.RecordInfo) *RecordInfoRedisModel
	ToUseCase(model *RecordInfoRedisModel) *usecase.RecordInfo
	ToArrRedisModel(entities []usecase.RecordInfo) []RecordInfoRedisModel
	ToArrUseCase(models []RecordInfoRedisModel) []usecase.RecordInfo
}

func ConvertPointerTime(t *time.Time) *time.Time {
	return t
}

func ConvertTime(t time.Time) time.Time {
	return t
}
