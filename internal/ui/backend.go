package ui

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/service"
)

// ConvertFunc runs one batch, reporting into sink.
type ConvertFunc func(ctx context.Context, sink service.Sink) (*entity.Batch, error)

// Backend renders a running batch to the user.
type Backend interface {
	Run(ctx context.Context, total int, convert ConvertFunc) (*entity.Batch, error)
	Interactive() bool
}

// Probe picks the progress bar UI when out is a terminal and plain is not
// requested, the line based console otherwise.
func Probe(out *os.File, plain bool) Backend {
	if !plain && isTerminal(out) {
		return NewTUI(os.Stdin, out)
	}
	return NewConsole(out)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func summary(w io.Writer, batch *entity.Batch) {
	if batch == nil {
		return
	}
	switch batch.Status {
	case entity.StatusCancelled:
		io.WriteString(w, "Conversion cancelled: ")
	default:
		io.WriteString(w, "Done: ")
	}
	io.WriteString(w, formatCounts(batch)+"\n")
}
