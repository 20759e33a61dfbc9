package entity

import (
	"errors"
	"fmt"
)

var (
	// Batch errors, returned before any file is touched
	ErrInvalidFormat  = errors.New("unsupported target format")
	ErrInvalidQuality = errors.New("quality must be between 1 and 100")
	ErrOutputDir      = errors.New("output directory is not usable")
	ErrBatchNotFound  = errors.New("batch not found")

	// File errors
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
	ErrIO     = errors.New("io error")
)

type ErrorKind string

const (
	KindDecode  ErrorKind = "decode"
	KindEncode  ErrorKind = "encode"
	KindIO      ErrorKind = "io"
	KindUnknown ErrorKind = "unknown"
)

// FileError is a failure confined to a single input of the batch.
type FileError struct {
	Kind error
	Path string
	Err  error
}

func NewFileError(kind error, path string, err error) *FileError {
	return &FileError{Kind: kind, Path: path, Err: err}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrEncode):
		return KindEncode
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindUnknown
	}
}
