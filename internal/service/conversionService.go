package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ace0731/Image-Converter/internal/database"
	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/pkg/processor"
)

type conversionService struct {
	processor processor.BatchProcessor
	repo      database.BatchRepository
	publisher Publisher

	bgCtx  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (s *conversionService) Convert(ctx context.Context, req entity.ConversionRequest, sinks ...Sink) (*entity.Batch, error) {
	stream, err := s.processor.Process(req)
	if err != nil {
		return nil, err
	}

	batch := newBatch(req)
	s.save(ctx, batch)
	s.run(ctx, batch, stream, sinks)
	return batch, nil
}

func (s *conversionService) Start(ctx context.Context, req entity.ConversionRequest) (*entity.Batch, error) {
	stream, err := s.processor.Process(req)
	if err != nil {
		return nil, err
	}

	batch := newBatch(req)
	s.save(ctx, batch)
	snapshot := *batch
	snapshot.Request.Files = slices.Clone(batch.Request.Files)
	snapshot.Results = slices.Clone(batch.Results)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.bgCtx, batch, stream, nil)
	}()

	return &snapshot, nil
}

func (s *conversionService) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *conversionService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func newBatch(req entity.ConversionRequest) *entity.Batch {
	now := time.Now()
	req.Files = slices.Clone(req.Files)
	return &entity.Batch{
		ID:        uuid.New().String(),
		Status:    entity.StatusProcessing,
		Request:   req,
		Progress:  entity.BatchProgress{Total: len(req.Files)},
		Results:   make([]entity.ConversionResult, 0, len(req.Files)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// run drains the stream. Cancellation is checked between files only, a file
// that has started is always finished.
func (s *conversionService) run(ctx context.Context, batch *entity.Batch, stream processor.Batch, sinks []Sink) {
	log := logrus.WithFields(logrus.Fields{
		"batch_id": batch.ID,
		"format":   batch.Request.Format,
		"files":    len(batch.Request.Files),
	})
	log.Info("Conversion started")

	if ctx.Err() == nil {
		for res, progress := range stream {
			batch.Results = append(batch.Results, res)
			batch.Progress = progress
			batch.UpdatedAt = time.Now()

			for _, sink := range sinks {
				sink.OnResult(res)
				sink.OnProgress(progress)
			}

			s.publish(ctx, batch.ID, res, progress)
			s.save(ctx, batch)

			if ctx.Err() != nil {
				break
			}
		}
	}

	batch.Status = entity.StatusCompleted
	if ctx.Err() != nil && !batch.Progress.Done() && len(batch.Request.Files) > 0 {
		batch.Status = entity.StatusCancelled
	}
	batch.UpdatedAt = time.Now()
	s.save(ctx, batch)

	log.WithFields(logrus.Fields{
		"status":    batch.Status,
		"succeeded": batch.Succeeded(),
		"failed":    batch.Failed(),
	}).Info("Conversion finished")
}

func (s *conversionService) save(ctx context.Context, batch *entity.Batch) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), batch); err != nil {
		logrus.Errorf("Failed to save batch %s: %v", batch.ID, err)
	}
}

func (s *conversionService) publish(ctx context.Context, batchID string, res entity.ConversionResult, progress entity.BatchProgress) {
	if s.publisher == nil {
		return
	}

	event := entity.ResultEvent{
		BatchID:  batchID,
		Result:   res,
		Progress: progress,
		Time:     time.Now(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logrus.Warnf("Failed to publish result for %s: %v", res.Source, err)
	}
}
