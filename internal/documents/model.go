package documents

import "time"

// Document is an uploaded file kept in object storage.
type Document struct {
	ID               string
	FileName         string
	MimeType         string
	SizeBytes        int64
	ContentHash      string
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}
