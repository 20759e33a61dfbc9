package processor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Full HD bounding box used unless configured otherwise.
const (
	MaxWidth  = 1920
	MaxHeight = 1080
)

// FitSize returns the dimensions of a w×h image shrunk to fit inside
// maxW×maxH with its aspect ratio kept. Images that already fit are never
// enlarged: the returned scale is exactly 1 and the size is unchanged.
func FitSize(w, h, maxW, maxH int) (int, int, float64) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h, 1
	}

	scale := math.Min(1, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	if scale >= 1 {
		return w, h, 1
	}

	newW := max(1, int(math.Round(float64(w)*scale)))
	newH := max(1, int(math.Round(float64(h)*scale)))
	return newW, newH, scale
}

// Fit downscales img into the bounding box. The image is returned as is when
// it already fits.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	newW, newH, scale := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if scale == 1 {
		return img
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

// Flatten drops the alpha channel and expands paletted or grey images to
// plain RGB for encoders without transparency support.
func Flatten(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
