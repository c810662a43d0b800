package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/paragraphs"
	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/storage/object"
	"docanalysis-backend/internal/shared/telemetry"
	"docanalysis-backend/internal/textanalysis"
)

const DefaultTopN = 10

// Service runs the classification, paragraph, text analysis and compliance
// pipeline over stored documents.
type Service struct {
	Repo      Repo
	DocRepo   documents.DocumentsRepo
	Store     object.ObjectStore
	Evaluator *compliance.Evaluator
	Analyzer  *textanalysis.Analyzer
	// Classifier is optional; without one every document is treated as scientific.
	Classifier classification.Classifier
	Paragraphs paragraphs.Options
	TopN       int
}

// ReportKey is the object key of the rendered report for a stored document.
func ReportKey(storageKey string) string {
	return storageKey + ".report.md"
}

// Run analyzes a stored document and persists the outcome. A document the
// classifier rejects is stored as rejected and ErrNotScientific is returned
// together with the analysis; other failures after the document is found are
// stored as failed.
func (s *Service) Run(ctx context.Context, documentID string) (Analysis, error) {
	if strings.TrimSpace(documentID) == "" {
		return Analysis{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	if s.Repo == nil || s.DocRepo == nil || s.Store == nil || s.Evaluator == nil {
		return Analysis{}, ErrMissingDependencies
	}

	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		return Analysis{}, fmt.Errorf("document lookup id=%s: %w", documentID, err)
	}

	start := time.Now()
	analysis := Analysis{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		CreatedAt:  start.UTC(),
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", logFields(ctx, analysis))

	text, err := s.documentText(ctx, doc)
	if err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeExtraction, err)
	}

	paras := paragraphs.DetectWithOptions(text, s.paragraphOptions(doc))

	if s.Classifier != nil {
		res, err := s.Classifier.Classify(ctx, classification.Input{
			FileName:       doc.FileName,
			Text:           text,
			ContentHash:    doc.ContentHash,
			ParagraphCount: len(paras),
		})
		if err != nil {
			return s.fail(ctx, analysis, start, ErrorCodeClassification, err)
		}
		analysis.Classification = &res
		if !res.IsScientific {
			return s.reject(ctx, analysis, start)
		}
	}

	if len(paras) == 0 {
		return s.fail(ctx, analysis, start, ErrorCodeNoParagraphs, ErrNoParagraphs)
	}
	analysis.Paragraphs = paras

	stats, err := s.analyzer().Analyze(paras, s.topN())
	if err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeInternal, err)
	}
	analysis.TextAnalysis = &stats

	verdict, err := s.Evaluator.ValidateCompliance(stats.TotalWords, len(paras))
	if err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeInternal, err)
	}
	analysis.Compliance = &verdict
	metrics.ObserveVerdict(verdict.IsCompliant)

	report, err := s.Evaluator.GenerateReport(compliance.ReportRequest{
		FileName:       doc.FileName,
		WordCount:      stats.TotalWords,
		ParagraphCount: len(paras),
		DocumentID:     doc.ID,
	})
	if err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeTemplate, err)
	}
	analysis.ReportMarkdown = report

	reportKey := ReportKey(doc.StorageKey)
	if _, err := s.Store.SaveWithKey(ctx, reportKey, "text/markdown; charset=utf-8", strings.NewReader(report)); err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeStorage, fmt.Errorf("save report: %w", err))
	}
	analysis.ReportKey = reportKey

	analysis.Status = StatusCompleted
	analysis.ProcessingMs = metrics.SinceMillis(start)
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeStorage, fmt.Errorf("persist analysis: %w", err))
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(analysis.ProcessingMs)
	fields := logFields(ctx, analysis)
	fields["status_transition"] = "processing->completed"
	fields["is_compliant"] = verdict.IsCompliant
	fields["word_count"] = stats.TotalWords
	fields["paragraph_count"] = len(paras)
	fields["duration_ms"] = analysis.ProcessingMs
	telemetry.Info("analysis.status", fields)

	return analysis, nil
}

// Classify runs only the classification step over a stored document.
func (s *Service) Classify(ctx context.Context, documentID string) (classification.Result, error) {
	if s.Classifier == nil {
		return classification.Result{}, ErrClassifierUnavailable
	}
	if s.DocRepo == nil || s.Store == nil {
		return classification.Result{}, ErrMissingDependencies
	}
	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		return classification.Result{}, fmt.Errorf("document lookup id=%s: %w", documentID, err)
	}
	text, err := s.documentText(ctx, doc)
	if err != nil {
		return classification.Result{}, err
	}
	return s.Classifier.Classify(ctx, classification.Input{
		FileName:       doc.FileName,
		Text:           text,
		ContentHash:    doc.ContentHash,
		ParagraphCount: paragraphs.Count(text, s.paragraphOptions(doc)),
	})
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// List returns analyses ordered newest-first, optionally for one document.
func (s *Service) List(ctx context.Context, documentID string, limit, offset int) ([]Analysis, error) {
	return s.Repo.List(ctx, documentID, limit, offset)
}

// Report returns the markdown report of a completed analysis.
func (s *Service) Report(ctx context.Context, analysisID string) (string, error) {
	analysis, err := s.Get(ctx, analysisID)
	if err != nil {
		return "", err
	}
	if analysis.Status != StatusCompleted {
		return "", fmt.Errorf("%w: analysis status is %s", ErrReportUnavailable, analysis.Status)
	}
	if analysis.ReportMarkdown != "" {
		return analysis.ReportMarkdown, nil
	}
	if analysis.ReportKey == "" || s.Store == nil {
		return "", ErrReportUnavailable
	}
	report, err := loadText(ctx, s.Store, analysis.ReportKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", ErrReportUnavailable, err)
		}
		return "", fmt.Errorf("load report %s: %w", analysis.ReportKey, err)
	}
	return report, nil
}

// AnalyzeParagraphs computes word statistics for caller-supplied paragraphs.
func (s *Service) AnalyzeParagraphs(paras []textanalysis.Paragraph, topN int) (textanalysis.Result, error) {
	return s.analyzer().Analyze(paras, topN)
}

// Validate checks counts against the configured rules.
func (s *Service) Validate(wordCount, paragraphCount int) (compliance.Result, error) {
	if s.Evaluator == nil {
		return compliance.Result{}, ErrMissingDependencies
	}
	return s.Evaluator.ValidateCompliance(wordCount, paragraphCount)
}

// RenderReport renders a report for caller-supplied counts.
func (s *Service) RenderReport(req compliance.ReportRequest) (string, error) {
	if s.Evaluator == nil {
		return "", ErrMissingDependencies
	}
	return s.Evaluator.GenerateReport(req)
}

// EffectiveTopN reports how many top words Run keeps.
func (s *Service) EffectiveTopN() int {
	return s.topN()
}

func (s *Service) topN() int {
	if s.TopN <= 0 {
		return DefaultTopN
	}
	return s.TopN
}

// paragraphOptions enables line-per-paragraph detection for plain text
// uploads only.
func (s *Service) paragraphOptions(doc documents.Document) paragraphs.Options {
	opts := s.Paragraphs
	opts.LinePerParagraph = opts.LinePerParagraph || extract.IsPlainText(doc.MimeType, doc.FileName)
	return opts
}

func (s *Service) analyzer() *textanalysis.Analyzer {
	if s.Analyzer == nil {
		return textanalysis.NewAnalyzer()
	}
	return s.Analyzer
}

// documentText returns the cached extraction when present, otherwise extracts
// and records the derived key on the document.
func (s *Service) documentText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.ExtractedTextKey != "" {
		text, err := loadText(ctx, s.Store, doc.ExtractedTextKey)
		if err == nil {
			return text, nil
		}
		telemetry.Warn("analysis.extracted_text_unreadable", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", fmt.Errorf("document %s: %w", doc.ID, err)
	}
	if err := s.DocRepo.UpdateExtraction(ctx, doc.ID, extract.ExtractedKey(doc.StorageKey), time.Now().UTC()); err != nil {
		telemetry.Warn("analysis.update_extraction_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	return text, nil
}

func (s *Service) reject(ctx context.Context, analysis Analysis, start time.Time) (Analysis, error) {
	analysis.Status = StatusRejected
	analysis.ProcessingMs = metrics.SinceMillis(start)
	if err := s.Repo.Create(context.WithoutCancel(ctx), analysis); err != nil {
		return s.fail(ctx, analysis, start, ErrorCodeStorage, fmt.Errorf("persist analysis: %w", err))
	}
	metrics.IncAnalysisRejected()
	fields := logFields(ctx, analysis)
	fields["status_transition"] = "processing->rejected"
	fields["document_type"] = analysis.Classification.DocumentType
	fields["confidence"] = analysis.Classification.Confidence
	telemetry.Info("analysis.status", fields)
	return analysis, ErrNotScientific
}

func (s *Service) fail(ctx context.Context, analysis Analysis, start time.Time, code string, err error) (Analysis, error) {
	analysis.Status = StatusFailed
	analysis.ErrorCode = code
	analysis.ErrorMessage = sanitizeError(err)
	analysis.ProcessingMs = metrics.SinceMillis(start)

	if saveErr := s.Repo.Create(context.WithoutCancel(ctx), analysis); saveErr != nil {
		telemetry.Error("analysis.persist_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"analysis_id": analysis.ID,
			"error":       saveErr.Error(),
		})
	}
	metrics.IncAnalysisFailed(code)
	metrics.ObserveAnalysisDurationMs(analysis.ProcessingMs)

	fields := logFields(ctx, analysis)
	fields["status_transition"] = "processing->failed"
	fields["error_code"] = code
	fields["error"] = analysis.ErrorMessage
	fields["duration_ms"] = analysis.ProcessingMs
	telemetry.Warn("analysis.status", fields)

	return analysis, fmt.Errorf("%s: %w", code, err)
}

func logFields(ctx context.Context, analysis Analysis) map[string]any {
	return map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"document_id": analysis.DocumentID,
		"analysis_id": analysis.ID,
		"status":      analysis.Status,
	}
}

// ErrorCode returns the pipeline error code carried by err, or "".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoParagraphs):
		return ErrorCodeNoParagraphs
	case errors.Is(err, compliance.ErrTemplate):
		return ErrorCodeTemplate
	case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrEmptyDocument):
		return ErrorCodeExtraction
	case errors.Is(err, classification.ErrClassifierFailed), errors.Is(err, classification.ErrInvalidResponse):
		return ErrorCodeClassification
	}
	msg := err.Error()
	for _, code := range []string{ErrorCodeExtraction, ErrorCodeClassification, ErrorCodeStorage, ErrorCodeInternal} {
		if strings.HasPrefix(msg, code+":") {
			return code
		}
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, "\uFFFD"))
	const maxLen = 500
	if len(msg) > maxLen {
		// Cut on a rune boundary; the message lands in a text column.
		n := maxLen
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return msg
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
