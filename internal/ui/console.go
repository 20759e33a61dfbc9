package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

type console struct {
	out io.Writer
}

func NewConsole(out io.Writer) Backend {
	return &console{out: out}
}

func (c *console) Interactive() bool { return false }

func (c *console) Run(ctx context.Context, total int, convert ConvertFunc) (*entity.Batch, error) {
	fmt.Fprintln(c.out, "--- Starting Conversion ---")

	batch, err := convert(ctx, c)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(c.out, "\n--- Conversion Finished ---")
	summary(c.out, batch)
	return batch, nil
}

func (c *console) OnResult(res entity.ConversionResult) {
	fmt.Fprintln(c.out, res.String())
}

func (c *console) OnProgress(entity.BatchProgress) {}

func formatCounts(batch *entity.Batch) string {
	return strconv.Itoa(batch.Succeeded()) + " converted, " +
		strconv.Itoa(batch.Failed()) + " failed, " +
		strconv.Itoa(batch.Progress.Total) + " selected"
}
