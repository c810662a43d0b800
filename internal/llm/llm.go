package llm

import (
	"context"
	"encoding/json"
)

// Client abstracts LLM providers for document classification.
type Client interface {
	ClassifyDocument(ctx context.Context, input ClassifyInput) (json.RawMessage, error)
}

// ClassifyInput captures the inputs needed to classify a document.
type ClassifyInput struct {
	FileName       string
	Text           string
	DocumentTypes  []string
	ParagraphCount int
	PromptVersion  string
}
