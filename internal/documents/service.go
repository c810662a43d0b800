package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/shared/storage/object"
	"docanalysis-backend/internal/shared/util"
)

const (
	storageNamespace    = "documents"
	DefaultMaxSizeBytes = 50 << 20
)

// DefaultAllowedExtensions are the file types the extractor can read.
var DefaultAllowedExtensions = []string{"pdf", "docx", "txt", "md"}

// Service contains business logic for documents.
type Service struct {
	Store             object.ObjectStore
	Repo              DocumentsRepo
	StorageProvider   string
	AllowedExtensions []string
	MaxSizeBytes      int64
}

// Upload validates the file, saves it to object storage and records the document.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if !s.extensionAllowed(fileName) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Ext(fileName))
	}

	maxSize := s.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return Document{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxSize)
	}
	if len(data) == 0 {
		return Document{}, ErrEmptyFile
	}

	storageKey, size, sniffed, err := s.Store.Save(ctx, storageNamespace, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	mimeType := extract.MimeTypeForName(fileName)
	if mimeType == "" {
		mimeType = sniffed
	}

	doc := Document{
		ID:              uuid.NewString(),
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		ContentHash:     util.ContentHash(data),
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}

// UpdateExtraction records where the extracted text of a document lives.
func (s *Service) UpdateExtraction(ctx context.Context, documentID, extractedKey string, extractedAt time.Time) error {
	return s.Repo.UpdateExtraction(ctx, documentID, extractedKey, extractedAt)
}

func (s *Service) extensionAllowed(fileName string) bool {
	allowed := s.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.TrimPrefix(strings.ToLower(a), ".") == ext {
			return true
		}
	}
	return false
}
