// Package classification decides whether a document is a scientific article.
package classification

import (
	"context"
	"errors"
)

// Document types known to the classifier.
const (
	TypeAdvertisement         = "advertisement"
	TypeBudget                = "budget"
	TypeEmail                 = "email"
	TypeFileFolder            = "file_folder"
	TypeForm                  = "form"
	TypeHandwritten           = "handwritten"
	TypeInvoice               = "invoice"
	TypeLetter                = "letter"
	TypeMemo                  = "memo"
	TypeNewsArticle           = "news_article"
	TypePresentation          = "presentation"
	TypeQuestionnaire         = "questionnaire"
	TypeResume                = "resume"
	TypeScientificPublication = "scientific_publication"
	TypeScientificReport      = "scientific_report"
	TypeSpecification         = "specification"
	TypeContract              = "contract"
)

// DocumentTypes lists every type a classifier may return.
var DocumentTypes = []string{
	TypeAdvertisement, TypeBudget, TypeEmail, TypeFileFolder, TypeForm,
	TypeHandwritten, TypeInvoice, TypeLetter, TypeMemo, TypeNewsArticle,
	TypePresentation, TypeQuestionnaire, TypeResume, TypeScientificPublication,
	TypeScientificReport, TypeSpecification, TypeContract,
}

const (
	DefaultThreshold = 0.5

	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
	SourceCache     = "cache"
)

var (
	ErrEmptyText        = errors.New("document text is empty")
	ErrInvalidResponse  = errors.New("invalid classification response")
	ErrUnknownType      = errors.New("unknown document type")
	ErrClassifierFailed = errors.New("classification failed")
)

// Input is the document to classify.
type Input struct {
	FileName       string
	Text           string
	ContentHash    string
	ParagraphCount int
}

// Result is a classification verdict.
type Result struct {
	DocumentType    string  `json:"documentType"`
	IsScientific    bool    `json:"isScientific"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidenceLevel"`
	Reasoning       string  `json:"reasoning,omitempty"`
	Source          string  `json:"source"`
}

// Classifier labels a document.
type Classifier interface {
	Classify(ctx context.Context, in Input) (Result, error)
}

// IsScientificType reports whether docType counts as a scientific article.
func IsScientificType(docType string) bool {
	return docType == TypeScientificPublication || docType == TypeScientificReport
}

// ConfidenceLevel buckets a confidence score.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

func knownType(docType string) bool {
	for _, t := range DocumentTypes {
		if t == docType {
			return true
		}
	}
	return false
}

func newResult(docType string, confidence, threshold float64, source string) Result {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{
		DocumentType:    docType,
		IsScientific:    IsScientificType(docType) && confidence >= threshold,
		Confidence:      confidence,
		ConfidenceLevel: ConfidenceLevel(confidence),
		Source:          source,
	}
}
