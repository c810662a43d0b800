package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docanalysis-backend/internal/shared/storage/object"
)

const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"

	mimeZip   = "application/zip"
	mimeOctet = "application/octet-stream"
)

var (
	ErrUnsupportedType = errors.New("unsupported mime type")
	ErrEmptyDocument   = errors.New("empty document")
)

// ExtractText pulls text from a stored object and persists a derived .extracted.txt copy.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	if err := saveExtracted(ctx, store, ExtractedKey(fileKey), text); err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	return text, nil
}

// ExtractedKey is the object key of the derived plain-text copy.
func ExtractedKey(fileKey string) string {
	return fileKey + ".extracted.txt"
}

// ExtractTextFromBytes extracts text from an in-memory payload. PDF paragraph
// gaps, PDF pages and DOCX paragraphs are separated by blank lines.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	normalized := NormalizeMimeType(mimeType, fileName, data)
	fn, ok := extractors[normalized]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	return fn(ctx, data)
}

type extractFunc func(ctx context.Context, data []byte) (string, error)

var extractors = map[string]extractFunc{
	MimePDF:      extractPDF,
	MimeDOCX:     extractDOCX,
	MimeText:     extractPlain,
	MimeMarkdown: extractPlain,
}

func saveExtracted(ctx context.Context, store object.ObjectStore, key string, text string) error {
	_, err := store.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text))
	return err
}

func extractDOCX(_ context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	doc := findZipEntry(zr, docxBody)
	if doc == nil {
		return "", fmt.Errorf("open docx: %s not found", docxBody)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	return stripDocxXML(string(raw))
}

const docxBody = "word/document.xml"

// findZipEntry matches names written with either slash style.
func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}

// stripDocxXML keeps the character data of word/document.xml. Each non-empty
// <w:p> becomes one block followed by a blank line; <w:br> and <w:tab> become
// a newline and a space.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var out, para strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			para.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "br", "cr":
				para.WriteByte('\n')
			case "tab":
				para.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Local != "p" {
				continue
			}
			if text := strings.TrimSpace(para.String()); text != "" {
				out.WriteString(text)
				out.WriteString("\n\n")
			}
			para.Reset()
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func extractPlain(_ context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// NormalizeMimeType resolves the effective type from the declared type, the
// zip contents of OOXML payloads and finally the file extension.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", mimeZip, mimeOctet:
	default:
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MimePDF
	}
	if byExt := MimeTypeForName(fileName); byExt != "" && (clean != mimeZip || byExt == MimeDOCX) {
		return byExt
	}
	if clean == "" {
		return mimeOctet
	}
	return clean
}

// IsPlainText reports whether the declared type or file name denotes a text
// or markdown upload.
func IsPlainText(mimeType, fileName string) bool {
	switch NormalizeMimeType(mimeType, fileName, nil) {
	case MimeText, MimeMarkdown:
		return true
	}
	return false
}

// MimeTypeForName maps a supported file extension to its MIME type, or "".
func MimeTypeForName(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeText
	case ".md", ".markdown":
		return MimeMarkdown
	default:
		return ""
	}
}

var ooxmlMarkers = []struct{ entry, mime string }{
	{docxBody, MimeDOCX},
	{"xl/workbook.xml", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	{"ppt/presentation.xml", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, m := range ooxmlMarkers {
		if findZipEntry(zr, m.entry) != nil {
			return m.mime
		}
	}
	return ""
}
