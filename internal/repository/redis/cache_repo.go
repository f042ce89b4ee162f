package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/lumina-ai/rag-backend/internal/cfg"
	"github.com/lumina-ai/rag-backend/internal/repository/redis/converter"
	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/clients"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/lumina-ai/rag-backend/pkg/logger"
)

// CacheRepo кэширует сводки реестра записей в Redis.
// В кэше лежат только метаданные; векторы и результаты поиска не кэшируются никогда.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.RecordInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.RecordInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetRecords возвращает закэшированные сводки по ID, игнорируя промахи и логируя их
func (r *CacheRepo) GetRecords(ctx context.Context, ids []string) (map[string]usecase.RecordInfo, error) {
	keys := r.buildRecordCacheKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[string]usecase.RecordInfo, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		model, err := r.unmarshalRecordFromCache(data)
		if err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", ids[i], model.ID)
			if err := r.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}
		result[ids[i]] = *r.conv.ToUseCase(model)
	}

	return result, nil
}

// SetRecords атомарно кэширует несколько сводок с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetRecords(ctx context.Context, records []usecase.RecordInfo) error {
	models := r.conv.ToArrRedisModel(records)

	pipeline := r.client.Client.Pipeline()
	for _, model := range models {
		data, err := r.marshalRecordForCache(model)
		if err != nil {
			r.logger.Warnf("Failed to marshal record for caching (Record ID: %s): %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		key := r.recordKey(model.ID)
		pipeline.Set(ctx, key, data, r.cfg.RecordTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteRecords удаляет сводки из кэша по ID
func (r *CacheRepo) DeleteRecords(ctx context.Context, ids []string) error {
	keys := r.buildRecordCacheKeys(ids)

	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// Ping проверяет доступность кэша.
func (r *CacheRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// marshalRecordForCache сериализует сводку записи в JSON для кэша
func (r *CacheRepo) marshalRecordForCache(model converter.RecordInfoRedisModel) ([]byte, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// unmarshalRecordFromCache десериализует JSON из кэша в модель сводки
func (r *CacheRepo) unmarshalRecordFromCache(data []byte) (*converter.RecordInfoRedisModel, error) {
	var model converter.RecordInfoRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildRecordCacheKeys формирует Redis-ключи из ID записей
func (r *CacheRepo) buildRecordCacheKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}

	return keys
}

// recordKey возвращает Redis-ключ для одной записи
func (r *CacheRepo) recordKey(id string) string {
	return fmt.Sprintf("record:%s", id)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
