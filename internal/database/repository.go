package database

import (
	"context"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

// BatchRepository keeps the latest snapshot of each batch for status lookups.
type BatchRepository interface {
	Save(ctx context.Context, batch *entity.Batch) error
	FindByID(ctx context.Context, id string) (*entity.Batch, error)
}
