package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/bootstrap"
	"docanalysis-backend/internal/shared/config"
)

func newTestRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg.Port = "0"
	cfg.Env = "test"
	cfg.ObjectStoreType = "local"
	cfg.LocalStoreDir = t.TempDir()
	cfg.CORSAllowOrigin = []string{"http://localhost:5173"}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app.Router
}

func uploadFile(t *testing.T, router *gin.Engine, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDocumentsUploadAndGet(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	resp := uploadFile(t, router, "hello.txt", []byte("hello world"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID  string `json:"documentId"`
		FileName    string `json:"fileName"`
		MimeType    string `json:"mimeType"`
		SizeBytes   int64  `json:"sizeBytes"`
		ContentHash string `json:"contentHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.DocumentID == "" || created.FileName != "hello.txt" || created.MimeType != "text/plain" || created.SizeBytes != 11 {
		t.Fatalf("unexpected upload response %+v", created)
	}
	if len(created.ContentHash) != 64 {
		t.Fatalf("expected sha256 hex content hash, got %q", created.ContentHash)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=5", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var list []struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].DocumentID != created.DocumentID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestDocumentsUploadErrors(t *testing.T) {
	router := newTestRouter(t, config.Config{MaxFileSizeBytes: 32})

	tests := []struct {
		name     string
		fileName string
		content  []byte
		status   int
		code     string
	}{
		{name: "unsupported extension", fileName: "image.png", content: []byte("png"), status: http.StatusUnsupportedMediaType, code: "unsupported_type"},
		{name: "empty file", fileName: "empty.txt", content: nil, status: http.StatusBadRequest, code: "validation_error"},
		{name: "too large", fileName: "big.txt", content: []byte(strings.Repeat("a", 64)), status: http.StatusRequestEntityTooLarge, code: "file_too_large"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp := uploadFile(t, router, tt.fileName, tt.content)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, body.Error.Code)
			}
		})
	}
}

func TestDocumentsMissingFileAndUnknownID(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/does-not-exist", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
