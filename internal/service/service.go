package service

import (
	"context"

	"github.com/Ace0731/Image-Converter/internal/database"
	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/pkg/processor"
)

type ConversionService interface {
	// Convert runs the whole batch in the calling goroutine.
	Convert(ctx context.Context, req entity.ConversionRequest, sinks ...Sink) (*entity.Batch, error)
	// Start validates the request and runs the batch in the background.
	Start(ctx context.Context, req entity.ConversionRequest) (*entity.Batch, error)
	GetBatch(ctx context.Context, id string) (*entity.Batch, error)
	// Shutdown cancels background batches and waits for them to stop.
	Shutdown()
}

// Sink receives the outcome of every file and the progress after it.
type Sink interface {
	OnResult(res entity.ConversionResult)
	OnProgress(p entity.BatchProgress)
}

type Publisher interface {
	Publish(ctx context.Context, message interface{}) error
	Close() error
}

func NewConversionService(proc processor.BatchProcessor, repo database.BatchRepository, publisher Publisher) ConversionService {
	bgCtx, cancel := context.WithCancel(context.Background())
	return &conversionService{
		processor: proc,
		repo:      repo,
		publisher: publisher,
		bgCtx:     bgCtx,
		cancel:    cancel,
	}
}

// HealthChecker is implemented by publishers that keep a broker connection.
type HealthChecker interface {
	HealthCheck() error
}
