package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/shared/server/middleware"
	"docanalysis-backend/internal/shared/server/respond"
	"docanalysis-backend/internal/textanalysis"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	Docs *documents.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs *documents.Service) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyzeDocument)
	rg.POST("/analyze", h.uploadAndAnalyze)
	rg.POST("/classify", h.uploadAndClassify)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/report", h.getReport)
	rg.POST("/text-analysis", h.textAnalysis)
	rg.POST("/compliance/validate", h.validate)
	rg.POST("/compliance/report", h.report)
}

func (h *Handler) analyzeDocument(c *gin.Context) {
	h.run(c, c.Param("id"))
}

func (h *Handler) uploadAndAnalyze(c *gin.Context) {
	doc, ok := documents.UploadFromForm(c, h.Docs)
	if !ok {
		return
	}
	h.run(c, doc.ID)
}

func (h *Handler) run(c *gin.Context, documentID string) {
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Run(ctx, documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotScientific):
			respond.Error(c, http.StatusUnprocessableEntity, "not_scientific", "document was not classified as a scientific article", toResponse(analysis, false))
		case errors.Is(err, ErrNoParagraphs):
			respond.Error(c, http.StatusUnprocessableEntity, "no_paragraphs", "no paragraphs were detected in the document", gin.H{"analysisId": analysis.ID})
		default:
			writeError(c, err)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(analysis, c.Query("paragraphs") == "true"))
}

func (h *Handler) uploadAndClassify(c *gin.Context) {
	doc, ok := documents.UploadFromForm(c, h.Docs)
	if !ok {
		return
	}
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Classify(ctx, doc.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"documentId":     doc.ID,
		"fileName":       doc.FileName,
		"classification": res,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(analysis, true))
}

func (h *Handler) getReport(c *gin.Context) {
	report, err := h.Svc.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Text(c, http.StatusOK, "text/markdown; charset=utf-8", report)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit, offset := documents.Pagination(c)

	analyses, err := h.Svc.List(c.Request.Context(), c.Query("documentId"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, toResponse(a, false))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) textAnalysis(c *gin.Context) {
	var req textAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	for _, p := range req.Paragraphs {
		if p.Index < 0 || p.WordCount < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "paragraph index and wordCount must be non-negative", gin.H{"index": p.Index})
			return
		}
	}
	topN := h.Svc.EffectiveTopN()
	if req.TopN != nil {
		topN = *req.TopN
	}
	res, err := h.Svc.AnalyzeParagraphs(req.Paragraphs, topN)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "wordCount and paragraphCount are required", nil)
		return
	}
	res, err := h.Svc.Validate(*req.WordCount, *req.ParagraphCount)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName, wordCount and paragraphCount are required", nil)
		return
	}
	report, err := h.Svc.RenderReport(compliance.ReportRequest{
		FileName:       req.FileName,
		WordCount:      *req.WordCount,
		ParagraphCount: *req.ParagraphCount,
		DocumentID:     req.DocumentID,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Text(c, http.StatusOK, "text/markdown; charset=utf-8", report)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, compliance.ErrInvalidInput),
		errors.Is(err, textanalysis.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, extract.ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "document type cannot be read", gin.H{"errorCode": ErrorCode(err)})
	case errors.Is(err, extract.ErrEmptyDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", "document has no content", gin.H{"errorCode": ErrorCode(err)})
	case errors.Is(err, ErrReportUnavailable):
		respond.Error(c, http.StatusConflict, "report_unavailable", err.Error(), nil)
	case errors.Is(err, ErrClassifierUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "classifier_unavailable", "no classifier is configured", nil)
	case errors.Is(err, compliance.ErrTemplate), errors.Is(err, compliance.ErrResourceNotFound):
		respond.Error(c, http.StatusInternalServerError, "template_error", "failed to render report", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process analysis", gin.H{"errorCode": ErrorCode(err)})
	}
}
