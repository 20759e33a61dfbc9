package database

import (
	"context"
	"slices"
	"sync"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

type memoryBatchRepository struct {
	mu      sync.RWMutex
	batches map[string]*entity.Batch
}

func NewMemoryBatchRepository() BatchRepository {
	return &memoryBatchRepository{batches: make(map[string]*entity.Batch)}
}

func (r *memoryBatchRepository) Save(_ context.Context, batch *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches[batch.ID] = clone(batch)
	return nil
}

func (r *memoryBatchRepository) FindByID(_ context.Context, id string) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[id]
	if !ok {
		return nil, entity.ErrBatchNotFound
	}
	return clone(batch), nil
}

// snapshots must not share the results slice with the running batch
func clone(b *entity.Batch) *entity.Batch {
	c := *b
	c.Results = slices.Clone(b.Results)
	c.Request.Files = slices.Clone(b.Request.Files)
	return &c
}
