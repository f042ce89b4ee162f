package usecase

import (
	"context"

	"github.com/lumina-ai/rag-backend/internal/domain"
)

// Embedder — адаптер внешнего провайдера эмбеддингов.
// Гарантирует ровно один вектор на входной текст в исходном порядке,
// каждый — сконфигурированной размерности. Сам по себе повторов не выполняет.
type Embedder interface {
	Embed(ctx context.Context, texts []string, purpose domain.EmbedPurpose) ([][]float32, error)
}

// ArchiveInfra — фоновый архивный сток исходных текстов.
// Все операции best-effort: ошибки логируются и не влияют на результат ингестии.
type ArchiveInfra interface {
	ArchiveTexts(items []ArchiveItem)
	RemoveArchived(ids []string)
	WaitForFlush(ctx context.Context) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
