package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docanalysis-backend/internal/llm"
)

// LLMClassifier delegates classification to a language model.
type LLMClassifier struct {
	Client    llm.Client
	Threshold float64
}

// NewLLMClassifier returns a classifier with the given acceptance threshold.
// A non-positive threshold selects DefaultThreshold.
func NewLLMClassifier(client llm.Client, threshold float64) *LLMClassifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &LLMClassifier{Client: client, Threshold: threshold}
}

type llmResponse struct {
	PredictedType string   `json:"predicted_type"`
	Confidence    *float64 `json:"confidence"`
	Reasoning     string   `json:"reasoning"`
}

func (c *LLMClassifier) Classify(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.Text) == "" {
		return Result{}, ErrEmptyText
	}
	raw, err := c.Client.ClassifyDocument(ctx, llm.ClassifyInput{
		FileName:       in.FileName,
		Text:           in.Text,
		DocumentTypes:  DocumentTypes,
		ParagraphCount: in.ParagraphCount,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrClassifierFailed, err)
	}

	var resp llmResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	docType := strings.ToLower(strings.TrimSpace(resp.PredictedType))
	if !knownType(docType) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownType, resp.PredictedType)
	}
	if resp.Confidence == nil {
		return Result{}, fmt.Errorf("%w: missing confidence", ErrInvalidResponse)
	}

	res := newResult(docType, *resp.Confidence, c.Threshold, SourceLLM)
	res.Reasoning = strings.TrimSpace(resp.Reasoning)
	return res, nil
}

var _ Classifier = (*LLMClassifier)(nil)
