package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/lumina-ai/rag-backend/internal/cfg"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/minio/minio-go/v7"
)

// ArchiveRepo хранит архивные копии исходных текстов в MinIO.
type ArchiveRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewArchiveRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ArchiveRepo {
	return &ArchiveRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Put загружает текст записи в MinIO и возвращает ключ объекта.
func (a *ArchiveRepo) Put(ctx context.Context, recordID, text string) (string, error) {
	data := []byte(text)
	reader := bytes.NewReader(data)

	info, err := a.mc.PutObject(ctx, a.cfg.BucketName, objectKey(recordID), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет архивную копию текста записи.
func (a *ArchiveRepo) Delete(ctx context.Context, recordID string) error {
	if err := a.mc.RemoveObject(ctx, a.cfg.BucketName, objectKey(recordID), minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func objectKey(recordID string) string {
	return fmt.Sprintf("records/%s.txt", recordID)
}
