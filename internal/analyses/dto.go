package analyses

import (
	"time"

	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/textanalysis"
)

// AnalysisResponse is the API shape of an analysis.
type AnalysisResponse struct {
	AnalysisID     string                   `json:"analysisId"`
	DocumentID     string                   `json:"documentId"`
	FileName       string                   `json:"fileName"`
	Status         string                   `json:"status"`
	IsScientific   bool                     `json:"isScientific"`
	Classification *classification.Result   `json:"classification,omitempty"`
	ParagraphCount int                      `json:"paragraphCount"`
	Paragraphs     []textanalysis.Paragraph `json:"paragraphs,omitempty"`
	TextAnalysis   *textanalysis.Result     `json:"textAnalysis,omitempty"`
	Compliance     *compliance.Result       `json:"compliance,omitempty"`
	ReportURL      string                   `json:"reportUrl,omitempty"`
	ErrorCode      string                   `json:"errorCode,omitempty"`
	ErrorMessage   string                   `json:"errorMessage,omitempty"`
	ProcessingMs   float64                  `json:"processingTimeMs"`
	CreatedAt      time.Time                `json:"createdAt"`
}

func toResponse(a Analysis, withParagraphs bool) AnalysisResponse {
	resp := AnalysisResponse{
		AnalysisID:     a.ID,
		DocumentID:     a.DocumentID,
		FileName:       a.FileName,
		Status:         a.Status,
		IsScientific:   a.IsScientific(),
		Classification: a.Classification,
		ParagraphCount: len(a.Paragraphs),
		TextAnalysis:   a.TextAnalysis,
		Compliance:     a.Compliance,
		ErrorCode:      a.ErrorCode,
		ErrorMessage:   a.ErrorMessage,
		ProcessingMs:   a.ProcessingMs,
		CreatedAt:      a.CreatedAt,
	}
	if withParagraphs {
		resp.Paragraphs = a.Paragraphs
	}
	if a.Status == StatusCompleted {
		resp.ReportURL = "/api/v1/analyses/" + a.ID + "/report"
	}
	return resp
}

type textAnalysisRequest struct {
	Paragraphs []textanalysis.Paragraph `json:"paragraphs"`
	TopN       *int                     `json:"topN"`
}

type validateRequest struct {
	WordCount      *int `json:"wordCount" binding:"required"`
	ParagraphCount *int `json:"paragraphCount" binding:"required"`
}

type reportRequest struct {
	FileName       string `json:"fileName" binding:"required"`
	WordCount      *int   `json:"wordCount" binding:"required"`
	ParagraphCount *int   `json:"paragraphCount" binding:"required"`
	DocumentID     string `json:"documentId"`
	Notes          string `json:"notes"`
}
