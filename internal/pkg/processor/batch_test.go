package processor

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

func newTestBatchProcessor() BatchProcessor {
	return NewBatchProcessor(NewImageProcessor(MaxWidth, MaxHeight))
}

func collect(t *testing.T, batch Batch) ([]entity.ConversionResult, []entity.BatchProgress) {
	t.Helper()

	var results []entity.ConversionResult
	var progress []entity.BatchProgress
	for res, p := range batch {
		results = append(results, res)
		progress = append(progress, p)
	}
	return results, progress
}

func testImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func writeFixture(t *testing.T, dir, name string, encode func(f *os.File) error) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f))
	return path
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	img := testImage(w, h, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	return writeFixture(t, dir, name, func(f *os.File) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	})
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	return writeFixture(t, dir, name, func(f *os.File) error {
		return png.Encode(f, img)
	})
}

func writeCorrupt(t *testing.T, dir, name string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0644))
	return path
}

func TestProcessLargeJPEGToWebP(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := writeJPEG(t, in, "photo.jpg", 4000, 3000)

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     []string{src},
		OutputDir: out,
		Format:    entity.FormatWebP,
		Quality:   85,
	})
	require.NoError(t, err)

	results, progress := collect(t, batch)
	require.Len(t, results, 1)
	res := results[0]
	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, filepath.Join(out, "photo.webp"), res.Output)
	assert.Equal(t, 1440, res.Width)
	assert.Equal(t, 1080, res.Height)
	assert.Positive(t, res.OriginalBytes)
	assert.Positive(t, res.NewBytes)
	assert.Equal(t, []entity.BatchProgress{{Completed: 1, Total: 1}}, progress)

	f, err := os.Open(res.Output)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1440, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)

	info, err := os.Stat(res.Output)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.NewBytes)
}

func TestProcessPNGIsLossless(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	original := testImage(800, 600, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	original.SetNRGBA(17, 42, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	src := writePNG(t, in, "drawing.png", original)

	// quality is ignored for png, even out of range
	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     []string{src},
		OutputDir: out,
		Format:    entity.FormatPNG,
		Quality:   0,
	})
	require.NoError(t, err)

	results, _ := collect(t, batch)
	require.Len(t, results, 1)
	require.True(t, results[0].OK(), results[0].Reason)

	f, err := os.Open(filepath.Join(out, "drawing.png"))
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 800, decoded.Bounds().Dx())
	assert.Equal(t, 600, decoded.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, color.NRGBAModel.Convert(decoded.At(17, 42)))
	assert.Equal(t, color.NRGBA{R: 10, G: 200, B: 30, A: 255}, color.NRGBAModel.Convert(decoded.At(0, 0)))
}

func TestProcessFlattensAlphaForJPEG(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := writePNG(t, in, "logo.png", testImage(64, 32, color.NRGBA{R: 200, G: 200, B: 200, A: 0}))

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     []string{src},
		OutputDir: out,
		Format:    entity.FormatJPEG,
		Quality:   90,
	})
	require.NoError(t, err)

	results, _ := collect(t, batch)
	require.True(t, results[0].OK(), results[0].Reason)
	assert.Equal(t, filepath.Join(out, "logo.jpeg"), results[0].Output)

	f, err := os.Open(results[0].Output)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 32, decoded.Bounds().Dy())
}

func TestProcessIsolatesFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	files := []string{
		writeJPEG(t, in, "a.jpg", 300, 200),
		writePNG(t, in, "b.png", testImage(50, 50, color.NRGBA{B: 255, A: 255})),
		writeCorrupt(t, in, "broken.jpg"),
		writeFixture(t, in, "c.bmp", func(f *os.File) error {
			return bmp.Encode(f, testImage(40, 30, color.NRGBA{R: 255, A: 255}))
		}),
		writeFixture(t, in, "d.tiff", func(f *os.File) error {
			return tiff.Encode(f, testImage(2500, 1000, color.NRGBA{G: 255, A: 255}), nil)
		}),
	}

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     files,
		OutputDir: out,
		Format:    entity.FormatWebP,
		Quality:   80,
	})
	require.NoError(t, err)

	results, progress := collect(t, batch)
	require.Len(t, results, len(files))

	failures := 0
	for i, res := range results {
		assert.Equal(t, files[i], res.Source, "results keep input order")
		if !res.OK() {
			failures++
			assert.Equal(t, files[2], res.Source)
			assert.Equal(t, entity.KindDecode, res.Kind)
			assert.Contains(t, res.String(), "Error: "+files[2]+" - ")
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1920, results[4].Width)
	assert.Equal(t, 768, results[4].Height)

	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Fraction(), progress[i-1].Fraction())
	}
	assert.Equal(t, 1.0, progress[len(progress)-1].Fraction())

	assert.FileExists(t, filepath.Join(out, "a.webp"))
	assert.NoFileExists(t, filepath.Join(out, "broken.webp"))
}

func TestProcessMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.jpg")

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     []string{missing},
		OutputDir: t.TempDir(),
		Format:    entity.FormatJPEG,
		Quality:   70,
	})
	require.NoError(t, err)

	results, progress := collect(t, batch)
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.Equal(t, entity.KindIO, results[0].Kind)
	assert.Equal(t, 1.0, progress[0].Fraction())
}

func TestProcessEmptyBatch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "never-created")

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		OutputDir: out,
		Format:    entity.FormatWebP,
		Quality:   80,
	})
	require.NoError(t, err)

	results, progress := collect(t, batch)
	assert.Empty(t, results)
	assert.Empty(t, progress)
	assert.NoDirExists(t, out)
}

func TestProcessStopsWhenConsumerBreaks(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	files := []string{
		writeJPEG(t, in, "first.jpg", 20, 20),
		writeJPEG(t, in, "second.jpg", 20, 20),
		writeJPEG(t, in, "third.jpg", 20, 20),
	}

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     files,
		OutputDir: out,
		Format:    entity.FormatPNG,
	})
	require.NoError(t, err)

	seen := 0
	for range batch {
		seen++
		break
	}

	assert.Equal(t, 1, seen)
	assert.FileExists(t, filepath.Join(out, "first.png"))
	assert.NoFileExists(t, filepath.Join(out, "second.png"))
	assert.NoFileExists(t, filepath.Join(out, "third.png"))
}

func TestProcessOverwritesExistingOutput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := writeJPEG(t, in, "same.jpg", 30, 30)
	stale := filepath.Join(out, "same.png")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	batch, err := newTestBatchProcessor().Process(entity.ConversionRequest{
		Files:     []string{src},
		OutputDir: out,
		Format:    entity.FormatPNG,
	})
	require.NoError(t, err)
	results, _ := collect(t, batch)
	require.True(t, results[0].OK())

	f, err := os.Open(stale)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessBatchFatalErrors(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	tests := []struct {
		name    string
		req     entity.ConversionRequest
		wantErr error
	}{
		{
			name:    "unknown format",
			req:     entity.ConversionRequest{Files: []string{"a.jpg"}, OutputDir: t.TempDir(), Format: "gif", Quality: 80},
			wantErr: entity.ErrInvalidFormat,
		},
		{
			name:    "quality too low",
			req:     entity.ConversionRequest{Files: []string{"a.jpg"}, OutputDir: t.TempDir(), Format: entity.FormatWebP, Quality: 0},
			wantErr: entity.ErrInvalidQuality,
		},
		{
			name:    "quality too high",
			req:     entity.ConversionRequest{Files: []string{"a.jpg"}, OutputDir: t.TempDir(), Format: entity.FormatJPEG, Quality: 101},
			wantErr: entity.ErrInvalidQuality,
		},
		{
			name:    "output is a file",
			req:     entity.ConversionRequest{Files: []string{"a.jpg"}, OutputDir: notADir, Format: entity.FormatPNG},
			wantErr: entity.ErrOutputDir,
		},
		{
			name:    "empty output path",
			req:     entity.ConversionRequest{Files: []string{"a.jpg"}, Format: entity.FormatPNG},
			wantErr: entity.ErrOutputDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := newTestBatchProcessor().Process(tt.req)

			assert.Nil(t, batch)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
