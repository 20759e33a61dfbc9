package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts the user facing names, including the "jpg" alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Lossy reports whether the encoder takes a quality setting and drops alpha.
func (f Format) Lossy() bool {
	return f == FormatWebP || f == FormatJPEG
}

func (f Format) Valid() bool {
	return f == FormatWebP || f == FormatJPEG || f == FormatPNG
}

type ConversionRequest struct {
	Files     []string `json:"files"`
	OutputDir string   `json:"output_dir"`
	Format    Format   `json:"format"`
	Quality   int      `json:"quality"`
}

// Validate checks the batch-wide parameters. Quality is only checked for
// lossy formats since PNG ignores it.
func (r ConversionRequest) Validate() error {
	if !r.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, r.Format)
	}
	if r.Format.Lossy() && (r.Quality < MinQuality || r.Quality > MaxQuality) {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, r.Quality)
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("%w: empty path", ErrOutputDir)
	}
	return nil
}

const (
	MinQuality = 1
	MaxQuality = 100
)

// OutputName is the flat output file name for a source path.
func OutputName(source string, format Format) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Extension()
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type ConversionResult struct {
	Source        string    `json:"source"`
	Output        string    `json:"output,omitempty"`
	Format        Format    `json:"format"`
	Outcome       Outcome   `json:"outcome"`
	OriginalBytes int64     `json:"original_bytes,omitempty"`
	NewBytes      int64     `json:"new_bytes,omitempty"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Kind          ErrorKind `json:"kind,omitempty"`
}

func Succeeded(source, output string, format Format, origBytes, newBytes int64, w, h int) ConversionResult {
	return ConversionResult{
		Source:        source,
		Output:        output,
		Format:        format,
		Outcome:       OutcomeSuccess,
		OriginalBytes: origBytes,
		NewBytes:      newBytes,
		Width:         w,
		Height:        h,
	}
}

func Failed(source, output string, format Format, err error) ConversionResult {
	return ConversionResult{
		Source:  source,
		Output:  output,
		Format:  format,
		Outcome: OutcomeFailure,
		Reason:  err.Error(),
		Kind:    KindOf(err),
	}
}

func (r ConversionResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// String renders the log line shown to the user for this file.
func (r ConversionResult) String() string {
	if !r.OK() {
		return fmt.Sprintf("Error: %s - %s", r.Source, r.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s [%s]",
		filepath.Base(r.Source), FormatMB(r.OriginalBytes), FormatMB(r.NewBytes), strings.ToUpper(string(r.Format)))
}

const bytesPerMB = 1024 * 1024

func FormatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/bytesPerMB)
}

type BatchProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (p BatchProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

func (p BatchProgress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}
