package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

type redisBatchRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBatchRepository(client *redis.Client, ttl time.Duration) BatchRepository {
	return &redisBatchRepository{client: client, ttl: ttl}
}

func (r *redisBatchRepository) Save(ctx context.Context, batch *entity.Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, batchKey(batch.ID), data, r.ttl).Err()
}

func (r *redisBatchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	data, err := r.client.Get(ctx, batchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrBatchNotFound
		}
		return nil, err
	}

	var batch entity.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func batchKey(id string) string {
	return "batch:" + id
}
