package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-backend/internal/shared/server/respond"
)

// Slack over the document cap so multipart framing doesn't reject a payload
// the service would accept.
const maxRequestBytes = MaxFileSizeBytes + (1 << 20)

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
	rg.GET("/documents/:id/file", h.file)
	rg.POST("/documents/:id/retry", h.retry)
	rg.PUT("/documents/:id/owner", h.linkOwner)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	req := UploadRequest{
		OwnerType:        c.PostForm("ownerType"),
		OwnerID:          c.PostForm("ownerId"),
		DeclaredMimeType: fileHeader.Header.Get("Content-Type"),
		OriginalFileName: fileHeader.Filename,
		Data:             data,
	}

	doc, err := h.Svc.SubmitUpload(c.Request.Context(), c.ClientIP(), req)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", validationErr.Reason, nil)
		case errors.Is(err, ErrRateLimited):
			c.Header("Retry-After", strconv.Itoa(int(h.Svc.Gate.RetryAfter().Seconds())))
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many uploads, slow down", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("ocrStatus", string(doc.OcrStatus))
	respond.Created(c, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	ownerType := c.Query("ownerType")
	ownerID := c.Query("ownerId")

	if ownerType != "" || ownerID != "" {
		docs, err := h.Svc.ListByOwner(c.Request.Context(), ownerType, ownerID)
		if err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				respond.Error(c, http.StatusBadRequest, "validation_error", validationErr.Reason, nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
			return
		}
		respond.JSON(c, http.StatusOK, toResponses(docs))
		return
	}

	limit := parseIntQuery(c, "limit", 20, 100)
	offset := parseIntQuery(c, "offset", 0, 1<<30)

	docs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}
	c.Set("ocrStatus", string(doc.OcrStatus))
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) file(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}

	contentType := contentTypeByFileType[doc.FileType]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.OriginalFileName+`"`)
	c.Data(http.StatusOK, contentType, doc.FileData)
}

func (h *Handler) retry(c *gin.Context) {
	documentID := c.Param("id")
	err := h.Svc.Retry(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrNotRetryable):
			respond.Error(c, http.StatusConflict, "not_retryable", "document is not in a retryable state", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to retry OCR", nil)
		}
		return
	}
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusAccepted, gin.H{"documentId": documentID, "ocrStatus": string(StatusProcessing)})
}

type linkOwnerRequest struct {
	OwnerID string `json:"ownerId"`
}

func (h *Handler) linkOwner(c *gin.Context) {
	var req linkOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.LinkOwner(c.Request.Context(), c.Param("id"), req.OwnerID)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", validationErr.Reason, nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to link document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func toResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}

func parseIntQuery(c *gin.Context, key string, def, max int) int {
	val := def
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			val = parsed
		}
	}
	if val < 0 {
		val = 0
	}
	if val > max {
		val = max
	}
	return val
}
