package documents

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	doc, ok := UploadFromForm(c, h.Svc)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusCreated, ToResponse(doc))
}

// UploadFromForm stores the multipart "file" field of the request. On failure
// it writes the error response and returns false.
func UploadFromForm(c *gin.Context, svc *Service) (Document, bool) {
	maxSize := svc.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	// Leave room for the multipart envelope.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload limit", nil)
			return Document{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return Document{}, false
	}

	doc, err := uploadHeader(c, svc, fileHeader)
	if err != nil {
		WriteError(c, err)
		return Document{}, false
	}
	return doc, true
}

func uploadHeader(c *gin.Context, svc *Service, fileHeader *multipart.FileHeader) (Document, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return Document{}, errors.Join(ErrInvalidInput, err)
	}
	defer file.Close()
	return svc.Upload(c.Request.Context(), fileHeader.Filename, file)
}

// WriteError maps document errors to HTTP responses.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrUnsupportedExtension):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", err.Error(), gin.H{"allowed": DefaultAllowedExtensions})
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyFile):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
	}
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, ToResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := Pagination(c)

	docs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		WriteError(c, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, ToResponse(doc))
	}

	respond.JSON(c, http.StatusOK, resp)
}

// Pagination reads limit (default 20, at most 50) and offset query parameters.
func Pagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
