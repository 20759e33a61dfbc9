package processor

import (
	"fmt"
	"iter"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/pkg/storage"
)

// Batch is the lazy result stream of one conversion request. Every input
// yields exactly one result, in input order, together with the progress
// reached after it. Stopping the range loop stops the batch before the next
// file is opened.
type Batch = iter.Seq2[entity.ConversionResult, entity.BatchProgress]

type BatchProcessor interface {
	Process(req entity.ConversionRequest) (Batch, error)
}

type batchProcessor struct {
	images     ImageProcessor
	newStorage func(dir string) storage.FileStorage
}

func NewBatchProcessor(images ImageProcessor) BatchProcessor {
	return &batchProcessor{images: images, newStorage: storage.NewFileStorage}
}

// Process validates the request and prepares the output directory. The
// returned error is batch-fatal; per-file problems are reported as Failure
// results by the sequence instead.
func (p *batchProcessor) Process(req entity.ConversionRequest) (Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	files := slices.Clone(req.Files)
	if len(files) == 0 {
		return func(func(entity.ConversionResult, entity.BatchProgress) bool) {}, nil
	}

	store := p.newStorage(req.OutputDir)
	if err := store.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrOutputDir, err)
	}

	return func(yield func(entity.ConversionResult, entity.BatchProgress) bool) {
		total := len(files)
		for i, source := range files {
			res := p.images.Convert(store, source, req.Format, req.Quality)
			if !yield(res, entity.BatchProgress{Completed: i + 1, Total: total}) {
				logrus.Infof("Batch stopped after %d of %d files", i+1, total)
				return
			}
		}
	}, nil
}
