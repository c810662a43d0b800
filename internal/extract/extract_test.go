package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docanalysis-backend/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Resumo do trabalho.</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>Introdução</w:t></w:r><w:r><w:tab/><w:t>ao tema.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	want := "Resumo do trabalho.\n\nIntrodução ao tema."
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	tests := []struct {
		name string
		mime string
		file string
	}{
		{name: "declared", mime: "text/plain; charset=utf-8", file: "a.bin"},
		{name: "markdown by extension", mime: "", file: "notes.md"},
		{name: "octet stream by extension", mime: "application/octet-stream", file: "notes.txt"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractTextFromBytes(context.Background(), []byte("\xef\xbb\xbfOlá mundo"), tt.mime, tt.file)
			if err != nil {
				t.Fatalf("ExtractTextFromBytes: %v", err)
			}
			if text != "Olá mundo" {
				t.Fatalf("unexpected text %q", text)
			}
		})
	}
}

func TestExtractTextFromBytes_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := ExtractTextFromBytes(ctx, nil, MimePDF, "a.pdf"); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := ExtractTextFromBytes(ctx, []byte("GIF89a"), "image/gif", "a.gif"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := ExtractTextFromBytes(ctx, []byte("%PDF-1.4 truncated"), "", "broken.pdf"); err == nil {
		t.Fatalf("expected error for broken pdf")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := ExtractTextFromBytes(cancelled, []byte("x"), MimeText, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct {
		mime string
		file string
		data []byte
		want string
	}{
		{mime: "Application/PDF", file: "x", want: MimePDF},
		{mime: "", file: "x.bin", data: []byte("%PDF-1.7"), want: MimePDF},
		{mime: "", file: "paper.docx", want: MimeDOCX},
		{mime: "application/zip", file: "paper.txt", want: "application/zip"},
		{mime: "", file: "photo.png", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := NormalizeMimeType(tt.mime, tt.file, tt.data); got != tt.want {
			t.Fatalf("NormalizeMimeType(%q, %q) = %q, want %q", tt.mime, tt.file, got, tt.want)
		}
	}
}

func TestExtractTextCachesExtractedCopy(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir())
	key, _, _, err := store.Save(ctx, "documents", "paper.txt", strings.NewReader("Primeiro.\n\nSegundo."))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	text, err := ExtractText(ctx, store, key, "text/plain", "paper.txt")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	rc, err := store.Open(ctx, ExtractedKey(key))
	if err != nil {
		t.Fatalf("open extracted copy: %v", err)
	}
	defer rc.Close()
	cached, _ := io.ReadAll(rc)
	if string(cached) != text {
		t.Fatalf("cached copy %q differs from %q", cached, text)
	}
}
