package service

import "github.com/Ace0731/Image-Converter/internal/entity"

// Reporter adapts plain callbacks to a Sink: one log line per file and the
// completion fraction after it. Nil callbacks are skipped.
type Reporter struct {
	Line     func(line string)
	Progress func(fraction float64)
}

func (r Reporter) OnResult(res entity.ConversionResult) {
	if r.Line != nil {
		r.Line(res.String())
	}
}

func (r Reporter) OnProgress(p entity.BatchProgress) {
	if r.Progress != nil {
		r.Progress(p.Fraction())
	}
}
