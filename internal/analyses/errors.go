package analyses

import "errors"

var (
	ErrNotFound              = errors.New("analysis not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotScientific         = errors.New("document is not a scientific article")
	ErrNoParagraphs          = errors.New("no paragraphs detected")
	ErrReportUnavailable     = errors.New("report not available")
	ErrClassifierUnavailable = errors.New("classifier not configured")
	ErrMissingDependencies   = errors.New("missing analysis dependencies")
)

const (
	ErrorCodeExtraction     = "EXTRACTION_ERROR"
	ErrorCodeClassification = "CLASSIFICATION_ERROR"
	ErrorCodeNoParagraphs   = "NO_PARAGRAPHS"
	ErrorCodeTemplate       = "TEMPLATE_ERROR"
	ErrorCodeStorage        = "STORAGE_ERROR"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)
