package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, file_name, mime_type, size_bytes, content_hash, storage_provider, storage_key, extracted_text_key, extracted_at, created_at`

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new document. An empty provider is stored as "local".
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	provider := doc.StorageProvider
	if provider == "" {
		provider = "local"
	}
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO documents (id, file_name, mime_type, size_bytes, content_hash, storage_provider, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.FileName, doc.MimeType, doc.SizeBytes,
		nullString(doc.ContentHash), provider, doc.StorageKey, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

// GetByID fetches a live document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1 AND deleted_at IS NULL`, documentID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// List returns live documents newest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE deleted_at IS NULL
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateExtraction records the extracted text key once, matching MemoryRepo:
// a key already set is kept. Unknown documents yield ErrNotFound.
func (r *PGRepo) UpdateExtraction(ctx context.Context, documentID, extractedKey string, extractedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE documents
SET extracted_text_key = COALESCE(extracted_text_key, $1),
    extracted_at = COALESCE(extracted_at, $2)
WHERE id = $3 AND deleted_at IS NULL`, extractedKey, extractedAt, documentID)
	if err != nil {
		return fmt.Errorf("update extraction %s: %w", documentID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc                                 Document
		contentHash, provider, extractedKey sql.NullString
		extractedAt                         sql.NullTime
	)
	err := row.Scan(&doc.ID, &doc.FileName, &doc.MimeType, &doc.SizeBytes, &contentHash,
		&provider, &doc.StorageKey, &extractedKey, &extractedAt, &doc.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	doc.ContentHash = contentHash.String
	doc.StorageProvider = provider.String
	doc.ExtractedTextKey = extractedKey.String
	if extractedAt.Valid {
		doc.ExtractedAt = &extractedAt.Time
	}
	return doc, nil
}

func clampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ DocumentsRepo = (*PGRepo)(nil)
