package analyses

import (
	"time"

	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/textanalysis"
)

const (
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// Analysis is one run of the pipeline over a stored document.
type Analysis struct {
	ID             string                   `json:"id"`
	DocumentID     string                   `json:"documentId"`
	FileName       string                   `json:"fileName"`
	Status         string                   `json:"status"`
	Classification *classification.Result   `json:"classification,omitempty"`
	Paragraphs     []textanalysis.Paragraph `json:"paragraphs,omitempty"`
	TextAnalysis   *textanalysis.Result     `json:"textAnalysis,omitempty"`
	Compliance     *compliance.Result       `json:"compliance,omitempty"`
	ReportKey      string                   `json:"reportKey,omitempty"`
	ReportMarkdown string                   `json:"-"`
	ErrorCode      string                   `json:"errorCode,omitempty"`
	ErrorMessage   string                   `json:"errorMessage,omitempty"`
	ProcessingMs   float64                  `json:"processingTimeMs"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// IsScientific reports the classification verdict. Analyses that skipped
// classification count as scientific.
func (a Analysis) IsScientific() bool {
	if a.Classification == nil {
		return true
	}
	return a.Classification.IsScientific
}
