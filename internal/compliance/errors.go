package compliance

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrResourceNotFound = errors.New("template not found")
	ErrTemplate         = errors.New("template error")
)
