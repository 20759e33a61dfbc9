package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

var ErrMissingSelection = errors.New("please select files and output folder")

// SupportedExtensions are the image files picked up when a folder is selected.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".webp", ".gif"}

// Session holds the user's current selections between the select and convert
// actions. It belongs to the presentation layer; the conversion service only
// sees the request built from it.
type Session struct {
	Files     []string
	OutputDir string
	Format    entity.Format
	Quality   int
}

func NewSession(format entity.Format, quality int) *Session {
	return &Session{Format: format, Quality: quality}
}

// SelectFiles replaces the file selection. Folders are expanded to the
// supported images directly inside them, in name order; explicit files are
// kept whatever their extension.
func (s *Session) SelectFiles(paths ...string) error {
	var files []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			// missing files are reported per file by the batch
			files = append(files, abs)
			continue
		}

		found, err := imagesIn(abs)
		if err != nil {
			return fmt.Errorf("read folder %s: %w", abs, err)
		}
		files = append(files, found...)
	}

	s.Files = files
	return nil
}

func (s *Session) SelectOutput(dir string) error {
	if strings.TrimSpace(dir) == "" {
		s.OutputDir = ""
		return nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	s.OutputDir = abs
	return nil
}

func (s *Session) SetFormat(name string) error {
	f, err := entity.ParseFormat(name)
	if err != nil {
		return err
	}
	s.Format = f
	return nil
}

func (s *Session) SetQuality(q int) error {
	if q < entity.MinQuality || q > entity.MaxQuality {
		return fmt.Errorf("%w: %d", entity.ErrInvalidQuality, q)
	}
	s.Quality = q
	return nil
}

func (s *Session) Request() (entity.ConversionRequest, error) {
	if len(s.Files) == 0 || s.OutputDir == "" {
		return entity.ConversionRequest{}, ErrMissingSelection
	}
	return entity.ConversionRequest{
		Files:     slices.Clone(s.Files),
		OutputDir: s.OutputDir,
		Format:    s.Format,
		Quality:   s.Quality,
	}, nil
}

func imagesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
