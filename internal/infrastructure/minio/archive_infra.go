package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/jitter"
	"github.com/lumina-ai/rag-backend/pkg/logger"
)

const (
	archiveTimeout = 30 * time.Second
	maxAttempts    = 3
	baseBackoff    = time.Second
	maxBackoff     = 10 * time.Second
)

// ArchiveInfrastructure асинхронно складывает исходные тексты записей в MinIO.
// Архив — best-effort: ошибки логируются и не влияют на результат ингестии,
// при завершении приложения фоновые задачи дожидаются через WaitForFlush.
type ArchiveInfrastructure struct {
	archiveRepo usecase.ArchiveRepository
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewArchiveInfrastructure(archiveRepo usecase.ArchiveRepository, logger logger.Logger, shutdownCtx context.Context) *ArchiveInfrastructure {
	return &ArchiveInfrastructure{
		archiveRepo: archiveRepo,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// ArchiveTexts запускает фоновую загрузку текстов в архив
func (a *ArchiveInfrastructure) ArchiveTexts(items []usecase.ArchiveItem) {
	if len(items) == 0 {
		return
	}
	a.wg.Add(1)
	go a.archiveItems(items)
}

// RemoveArchived запускает фоновое удаление архивных копий
func (a *ArchiveInfrastructure) RemoveArchived(ids []string) {
	if len(ids) == 0 {
		return
	}
	a.wg.Add(1)
	go a.removeItems(ids)
}

func (a *ArchiveInfrastructure) archiveItems(items []usecase.ArchiveItem) {
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(a.shutdownCtx, archiveTimeout)
	defer cancel()

	for _, item := range items {
		if err := a.withRetry(ctx, func() error {
			_, err := a.archiveRepo.Put(ctx, item.ID, item.Text)
			return err
		}); err != nil {
			a.logger.Warnf("archive upload failed, record_id=%s: %v", item.ID, err)
		}
	}
}

func (a *ArchiveInfrastructure) removeItems(ids []string) {
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(a.shutdownCtx, archiveTimeout)
	defer cancel()

	for _, id := range ids {
		if err := a.withRetry(ctx, func() error {
			return a.archiveRepo.Delete(ctx, id)
		}); err != nil {
			a.logger.Warnf("archive delete failed, record_id=%s: %v", id, err)
		}
	}
}

// withRetry повторяет операцию с экспоненциальной задержкой и jitter
func (a *ArchiveInfrastructure) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// WaitForFlush ожидает завершения всех фоновых архивных задач с учётом таймаута завершения приложения.
func (a *ArchiveInfrastructure) WaitForFlush(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("archive flush timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
