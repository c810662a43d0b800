package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"docanalysis-backend/internal/classification"
)

var analysisColumns = []string{
	"id", "document_id", "file_name", "status", "classification", "paragraphs", "text_analysis", "compliance",
	"report_key", "report_markdown", "error_code", "error_message", "processing_ms", "created_at",
}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateRejected(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	analysis := Analysis{
		ID:         "an-1",
		DocumentID: "doc-1",
		FileName:   "carta.txt",
		Status:     StatusRejected,
		Classification: &classification.Result{
			DocumentType: classification.TypeLetter,
			Confidence:   0.9,
		},
		ProcessingMs: 12.5,
		CreatedAt:    created,
	}

	// Statistics are absent on rejected analyses and stored as NULL.
	mock.ExpectExec("INSERT INTO analyses").
		WithArgs("an-1", "doc-1", "carta.txt", StatusRejected, false, sqlmock.AnyArg(), nil, nil, nil,
			nil, nil, nil, nil, 12.5, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesJSONB(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs("an-1").
		WillReturnRows(sqlmock.NewRows(analysisColumns).AddRow(
			"an-1", "doc-1", "artigo.pdf", StatusCompleted,
			[]byte(`{"documentType":"scientific_publication","isScientific":true,"confidence":0.8}`),
			[]byte(`[{"index":0,"text":"Resumo","wordCount":1}]`),
			[]byte(`{"totalWords":1,"uniqueWords":1,"wordFrequencies":{"resumo":1},"topWords":[{"word":"resumo","count":1}]}`),
			[]byte(`{"isCompliant":false,"wordCount":1,"paragraphCount":1,"recommendedActions":["a"]}`),
			"documents/x.pdf.report.md", nil, nil, nil, 4.2, created,
		))

	a, err := repo.GetByID(context.Background(), "an-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !a.IsScientific() || a.Classification.DocumentType != classification.TypeScientificPublication {
		t.Fatalf("unexpected classification %+v", a.Classification)
	}
	if len(a.Paragraphs) != 1 || a.TextAnalysis.TotalWords != 1 || a.Compliance.IsCompliant {
		t.Fatalf("unexpected decoded analysis %+v", a)
	}
	if a.ReportKey != "documents/x.pdf.report.md" || a.ReportMarkdown != "" || a.ErrorCode != "" {
		t.Fatalf("unexpected nullable fields %+v", a)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListClampsPaging(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs("doc-1", 100, 0).
		WillReturnRows(sqlmock.NewRows(analysisColumns).AddRow(
			"an-2", "doc-1", "a.txt", StatusFailed, nil, nil, nil, nil,
			nil, nil, ErrorCodeNoParagraphs, "no paragraphs detected", 1.0, created,
		))

	list, err := repo.List(context.Background(), "doc-1", 1000, -5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ErrorCode != ErrorCodeNoParagraphs || list[0].Classification != nil {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMarshalJSONBEmpty(t *testing.T) {
	for _, v := range []any{(*classification.Result)(nil), []int{}} {
		got, err := marshalJSONB(v)
		if err != nil || got != nil {
			t.Fatalf("marshalJSONB(%v) = %v, %v; want nil", v, got, err)
		}
	}
}
