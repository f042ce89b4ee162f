package qdrant

import (
	"context"

	"github.com/jimlawless/whereami"
	"github.com/lumina-ai/rag-backend/internal/cfg"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

// VectorRepo репозиторий для работы с embedding-векторами в Qdrant
type VectorRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewVectorRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *VectorRepo {
	return &VectorRepo{
		client: client,
		cfg:    cfg,
	}
}

// CollectionExists проверяет существование коллекции.
func (q *VectorRepo) CollectionExists(ctx context.Context) (bool, error) {
	exists, err := q.client.CollectionExists(ctx, q.cfg.CollectionName)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}

// CreateCollection создаёт коллекцию с сконфигурированной размерностью
// и косинусной метрикой. Параметры задаются ровно один раз при создании.
func (q *VectorRepo) CreateCollection(ctx context.Context) error {
	err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.cfg.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Upsert сохраняет или обновляет embedding-векторы в коллекции Qdrant.
// Батч применяется одним вызовом: либо целиком, либо никак.
func (q *VectorRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	reqVectors := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		reqVectors = append(reqVectors, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vector.ID),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(vector.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         reqVectors,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Search возвращает ближайшие к запросному вектору записи в порядке
// убывания косинусной близости, как их отдаёт Qdrant. Пересортировка
// и разрешение ничьих не выполняются.
func (q *VectorRepo) Search(ctx context.Context, vector []float32, limit uint64) ([]domain.QueryResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	results := make([]domain.QueryResult, 0, len(points))
	for _, point := range points {
		results = append(results, domain.NewQueryResult(
			point.GetId().GetUuid(),
			point.GetScore(),
			payloadFromQdrant(point.GetPayload()),
		))
	}

	return results, nil
}

// Count возвращает точное число записей в коллекции.
func (q *VectorRepo) Count(ctx context.Context) (uint64, error) {
	exact := true
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.CollectionName,
		Exact:          &exact,
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// Delete удаляет записи по идентификаторам.
func (q *VectorRepo) Delete(ctx context.Context, ids []string) error {
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.CollectionName,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// payloadFromQdrant разворачивает qdrant-представление payload в доменное.
func payloadFromQdrant(payload map[string]*qdrant.Value) domain.Payload {
	result := make(domain.Payload, len(payload))
	for key, value := range payload {
		result[key] = valueToAny(value)
	}

	return result
}

func valueToAny(value *qdrant.Value) any {
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, 0, len(items))
		for _, item := range items {
			list = append(list, valueToAny(item))
		}
		return list
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = valueToAny(v)
		}
		return m
	default:
		return nil
	}
}
