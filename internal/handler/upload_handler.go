package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invodex/internal/service"
)

// UploadHandler handles document upload endpoints.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload handles POST /api/v1/upload
// @Summary Upload a document
// @Description Upload an invoice document (PDF, JPG, PNG, max 16MB) for later extraction
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to upload (PDF, JPG, or PNG)"
// @Success 201 {object} Response{data=domain.UploadedDocument} "Document stored"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.uploadService.Upload(c.Request.Context(), service.DocumentUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// Status handles GET /api/v1/upload/status/:document_id
// @Summary Get upload status
// @Description Look up a stored document by its id
// @Tags upload
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} Response{data=domain.UploadedDocument} "Stored document"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /upload/status/{document_id} [get]
func (h *UploadHandler) Status(c *gin.Context) {
	doc, err := h.uploadService.Status(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Validate handles POST /api/v1/upload/validate
// @Summary Validate a document without storing it
// @Description Run the upload checks (extension, size, content sniffing) and report the result
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to validate"
// @Success 200 {object} Response{data=ValidateUploadResponse} "Validation result"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /upload/validate [post]
func (h *UploadHandler) Validate(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	filename, err := h.uploadService.Validate(service.DocumentUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"valid": true, "filename": filename})
}
