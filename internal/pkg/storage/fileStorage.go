package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage writes converted images into one flat output directory.
type FileStorage interface {
	EnsureRoot() error
	Save(name string, data io.Reader) (int64, error)
	Size(name string) (int64, error)
	Path(name string) string
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) FileStorage {
	return &fileStorage{basePath: basePath}
}

// EnsureRoot creates the output directory if needed and checks that it is a
// writable directory.
func (s *fileStorage) EnsureRoot() error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return err
	}

	info, err := os.Stat(s.basePath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.basePath)
	}

	probe, err := os.CreateTemp(s.basePath, ".imgconv-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// Save writes into a temp file next to the target and renames it over any
// existing file with the same name. A failed write leaves the old file as it
// was.
func (s *fileStorage) Save(name string, data io.Reader) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.basePath, "."+name+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *fileStorage) Size(name string) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *fileStorage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// the output layout is flat, no subdirectories
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid output file name %q", name)
	}
	return nil
}
