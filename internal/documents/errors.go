package documents

import "errors"

var (
	ErrNotFound             = errors.New("document not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrTooLarge             = errors.New("file too large")
	ErrEmptyFile            = errors.New("file is empty")
)
