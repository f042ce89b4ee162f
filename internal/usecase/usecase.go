package usecase

import "context"

type EmbeddingUC interface {
	SaveText(ctx context.Context, req *SaveTextReq) (*SaveTextRes, error)
	SaveTexts(ctx context.Context, req *SaveTextsReq) (*SaveTextsRes, error)
	Retrieve(ctx context.Context, req *RetrieveReq) (*RetrieveRes, error)
	CountRecords(ctx context.Context) (uint64, error)
	DeleteRecords(ctx context.Context, req *DeleteRecordsReq) error
	GetRecords(ctx context.Context, req *GetRecordsReq) (*GetRecordsRes, error)
	CheckHealth(ctx context.Context) *HealthRes
}
