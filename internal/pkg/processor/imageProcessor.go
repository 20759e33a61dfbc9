package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/pkg/storage"

	// BMP and TIFF sources
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageProcessor converts a single source file into the output storage.
type ImageProcessor interface {
	Convert(store storage.FileStorage, source string, format entity.Format, quality int) entity.ConversionResult
}

type imageProcessor struct {
	maxWidth  int
	maxHeight int
}

func NewImageProcessor(maxWidth, maxHeight int) ImageProcessor {
	if maxWidth <= 0 {
		maxWidth = MaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = MaxHeight
	}
	return &imageProcessor{maxWidth: maxWidth, maxHeight: maxHeight}
}

// Convert never returns an error: every failure of this file ends up in the
// result so the rest of the batch is not affected.
func (p *imageProcessor) Convert(store storage.FileStorage, source string, format entity.Format, quality int) (res entity.ConversionResult) {
	name := entity.OutputName(source, format)
	output := store.Path(name)
	log := logrus.WithFields(logrus.Fields{"source": source, "format": format})

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Recovered from panic while converting: %v", r)
			res = entity.Failed(source, output, format, fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	img, origSize, err := p.loadImage(source)
	if err != nil {
		log.Warnf("Failed to load image: %v", err)
		return entity.Failed(source, output, format, err)
	}

	img = Fit(img, p.maxWidth, p.maxHeight)
	if format.Lossy() {
		img = Flatten(img)
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, format, quality); err != nil {
		log.Warnf("Failed to encode image: %v", err)
		return entity.Failed(source, output, format, entity.NewFileError(entity.ErrEncode, source, err))
	}

	if _, err := store.Save(name, &buf); err != nil {
		log.Warnf("Failed to write %s: %v", output, err)
		return entity.Failed(source, output, format, entity.NewFileError(entity.ErrEncode, source, err))
	}

	newSize, err := store.Size(name)
	if err != nil {
		return entity.Failed(source, output, format, entity.NewFileError(entity.ErrIO, output, err))
	}

	b := img.Bounds()
	log.WithFields(logrus.Fields{"width": b.Dx(), "height": b.Dy(), "bytes": newSize}).Debug("Image converted")
	return entity.Succeeded(source, output, format, origSize, newSize, b.Dx(), b.Dy())
}

func (p *imageProcessor) loadImage(path string) (image.Image, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, entity.NewFileError(entity.ErrIO, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, entity.NewFileError(entity.ErrIO, path, err)
	}
	if info.IsDir() {
		return nil, 0, entity.NewFileError(entity.ErrIO, path, fmt.Errorf("%s is a directory", path))
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, 0, entity.NewFileError(entity.ErrDecode, path, err)
	}
	return img, info.Size(), nil
}

func encode(w io.Writer, img image.Image, format entity.Format, quality int) error {
	switch format {
	case entity.FormatWebP:
		return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
	case entity.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case entity.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		return fmt.Errorf("%w: %q", entity.ErrInvalidFormat, format)
	}
}
