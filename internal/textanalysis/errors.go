package textanalysis

import "errors"

var ErrInvalidInput = errors.New("invalid input")
