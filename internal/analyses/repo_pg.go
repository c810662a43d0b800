package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Structured results live in JSONB columns.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, document_id, file_name, status, classification, paragraphs, text_analysis, compliance,
       report_key, report_markdown, error_code, error_message, processing_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, document_id, file_name, status, is_scientific, classification, paragraphs, text_analysis, compliance,
	report_key, report_markdown, error_code, error_message, processing_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	classificationPayload, err := marshalJSONB(analysis.Classification)
	if err != nil {
		return fmt.Errorf("marshal classification: %w", err)
	}
	paragraphsPayload, err := marshalJSONB(analysis.Paragraphs)
	if err != nil {
		return fmt.Errorf("marshal paragraphs: %w", err)
	}
	textPayload, err := marshalJSONB(analysis.TextAnalysis)
	if err != nil {
		return fmt.Errorf("marshal text analysis: %w", err)
	}
	compliancePayload, err := marshalJSONB(analysis.Compliance)
	if err != nil {
		return fmt.Errorf("marshal compliance: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.FileName,
		analysis.Status,
		analysis.IsScientific(),
		classificationPayload,
		paragraphsPayload,
		textPayload,
		compliancePayload,
		nullString(analysis.ReportKey),
		nullString(analysis.ReportMarkdown),
		nullString(analysis.ErrorCode),
		nullString(analysis.ErrorMessage),
		analysis.ProcessingMs,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `
SELECT ` + selectColumns + `
FROM analyses
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// List returns analyses newest first, optionally restricted to a document.
func (r *PGRepo) List(ctx context.Context, documentID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + selectColumns + `
FROM analyses
WHERE deleted_at IS NULL AND ($1 = '' OR document_id = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, documentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var classificationRaw, paragraphsRaw, textRaw, complianceRaw []byte
	var reportKey, reportMarkdown, errorCode, errorMessage sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.FileName,
		&a.Status,
		&classificationRaw,
		&paragraphsRaw,
		&textRaw,
		&complianceRaw,
		&reportKey,
		&reportMarkdown,
		&errorCode,
		&errorMessage,
		&a.ProcessingMs,
		&a.CreatedAt,
	); err != nil {
		return Analysis{}, err
	}
	if err := unmarshalJSONB(classificationRaw, &a.Classification); err != nil {
		return Analysis{}, fmt.Errorf("decode classification: %w", err)
	}
	if err := unmarshalJSONB(paragraphsRaw, &a.Paragraphs); err != nil {
		return Analysis{}, fmt.Errorf("decode paragraphs: %w", err)
	}
	if err := unmarshalJSONB(textRaw, &a.TextAnalysis); err != nil {
		return Analysis{}, fmt.Errorf("decode text analysis: %w", err)
	}
	if err := unmarshalJSONB(complianceRaw, &a.Compliance); err != nil {
		return Analysis{}, fmt.Errorf("decode compliance: %w", err)
	}
	a.ReportKey = reportKey.String
	a.ReportMarkdown = reportMarkdown.String
	a.ErrorCode = errorCode.String
	a.ErrorMessage = errorMessage.String
	return a, nil
}

// marshalJSONB encodes a value for a nullable JSONB column; nil pointers and
// empty slices become SQL NULL.
func marshalJSONB(value any) (any, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	switch string(payload) {
	case "null", "[]":
		return nil, nil
	}
	return payload, nil
}

func unmarshalJSONB(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
