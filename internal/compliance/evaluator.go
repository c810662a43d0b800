// Package compliance checks word and paragraph counts against structural
// rules and renders a markdown report from a ${name} template.
package compliance

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// DefaultTemplate is the report template shipped with the service.
//
//go:embed templates/report.md
var DefaultTemplate string

// Result is the verdict for a pair of counts.
type Result struct {
	IsCompliant         bool     `json:"isCompliant"`
	WordsCompliant      bool     `json:"wordsCompliant"`
	ParagraphsCompliant bool     `json:"paragraphsCompliant"`
	WordCount           int      `json:"wordCount"`
	ParagraphCount      int      `json:"paragraphCount"`
	WordDifference      int      `json:"wordDifference"`
	ParagraphDifference int      `json:"paragraphDifference"`
	RecommendedActions  []string `json:"recommendedActions"`
}

// Evaluator validates counts and renders reports. The template is read once
// at construction and never written afterwards, so an Evaluator is safe for
// concurrent use.
type Evaluator struct {
	rules    Rules
	template string
	loaded   bool

	// Now stamps generated reports. Defaults to time.Now.
	Now func() time.Time
}

// NewEvaluator reads the template at templatePath. A missing or unreadable
// file yields ErrResourceNotFound.
func NewEvaluator(rules Rules, templatePath string) (*Evaluator, error) {
	if strings.TrimSpace(templatePath) == "" {
		return nil, fmt.Errorf("%w: template path is empty", ErrResourceNotFound)
	}
	data, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, templatePath)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrResourceNotFound, templatePath, err)
	}
	return NewEvaluatorFromTemplate(rules, string(data))
}

// NewEvaluatorFromTemplate builds an evaluator around an in-memory template.
func NewEvaluatorFromTemplate(rules Rules, text string) (*Evaluator, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: template is empty", ErrResourceNotFound)
	}
	return &Evaluator{rules: rules, template: text, loaded: true, Now: time.Now}, nil
}

// Rules returns the thresholds the evaluator checks against.
func (e *Evaluator) Rules() Rules {
	return e.rules
}

// ValidateCompliance checks the counts against the configured rules.
func (e *Evaluator) ValidateCompliance(wordCount, paragraphCount int) (Result, error) {
	if wordCount < 0 {
		return Result{}, fmt.Errorf("%w: word count must be non-negative, got %d", ErrInvalidInput, wordCount)
	}
	if paragraphCount < 0 {
		return Result{}, fmt.Errorf("%w: paragraph count must be non-negative, got %d", ErrInvalidInput, paragraphCount)
	}

	res := Result{
		WordsCompliant:      wordCount >= e.rules.MinWords,
		ParagraphsCompliant: paragraphCount == e.rules.RequiredParagraphs,
		WordCount:           wordCount,
		ParagraphCount:      paragraphCount,
		WordDifference:      wordCount - e.rules.MinWords,
		ParagraphDifference: paragraphCount - e.rules.RequiredParagraphs,
		RecommendedActions:  []string{},
	}
	res.IsCompliant = res.WordsCompliant && res.ParagraphsCompliant

	if !res.WordsCompliant {
		res.RecommendedActions = append(res.RecommendedActions, fmt.Sprintf(
			"Adicionar %d palavras para atingir o mínimo de %d", -res.WordDifference, e.rules.MinWords))
	}
	if !res.ParagraphsCompliant {
		if res.ParagraphDifference < 0 {
			res.RecommendedActions = append(res.RecommendedActions, fmt.Sprintf(
				"Adicionar %d parágrafo(s) para atingir exatamente %d", -res.ParagraphDifference, e.rules.RequiredParagraphs))
		} else {
			res.RecommendedActions = append(res.RecommendedActions, fmt.Sprintf(
				"Fundir ou redistribuir conteúdo para reduzir %d parágrafo(s) e ter exatamente %d", res.ParagraphDifference, e.rules.RequiredParagraphs))
		}
	}
	return res, nil
}

// ReportData validates the counts and computes the values a report exposes.
func (e *Evaluator) ReportData(req ReportRequest) (ReportData, Result, error) {
	res, err := e.ValidateCompliance(req.WordCount, req.ParagraphCount)
	if err != nil {
		return ReportData{}, Result{}, err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return newReportData(e.rules, req, res, now()), res, nil
}

// GenerateReport validates the counts and renders the loaded template.
func (e *Evaluator) GenerateReport(req ReportRequest) (string, error) {
	if e == nil || !e.loaded {
		return "", fmt.Errorf("%w: evaluator has no template loaded", ErrResourceNotFound)
	}
	data, _, err := e.ReportData(req)
	if err != nil {
		return "", err
	}
	return render(e.template, data.values())
}
