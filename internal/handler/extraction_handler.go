package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invodex/internal/service"
)

// ExtractionHandler handles invoice extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Extract handles POST /api/v1/extract/:document_id
// @Summary Extract an uploaded document
// @Description Run vision-LLM extraction on a stored document and save the resulting invoice
// @Tags extraction
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} Response{data=domain.ExtractionResult} "Extraction result"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 422 {object} ErrorResponseBody "Extraction failed"
// @Failure 502 {object} ErrorResponseBody "Provider unavailable"
// @Router /extract/{document_id} [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	result, err := h.extractionService.Extract(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// ExtractBatch handles POST /api/v1/extract/batch
// @Summary Extract multiple documents
// @Description Run extraction over a list of stored documents with bounded concurrency
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body BatchExtractRequest true "Document IDs to extract"
// @Success 200 {object} Response{data=service.BatchExtractionResult} "Per-document results and summary"
// @Failure 400 {object} ErrorResponseBody "Empty or malformed request"
// @Router /extract/batch [post]
func (h *ExtractionHandler) ExtractBatch(c *gin.Context) {
	var req BatchExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_ids field is required")
		return
	}

	batch, err := h.extractionService.ExtractBatch(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// Status handles GET /api/v1/extract/status/:extraction_id
// @Summary Get extraction status
// @Description Extraction runs synchronously, so any issued extraction id reports completed
// @Tags extraction
// @Produce json
// @Param extraction_id path string true "Extraction ID"
// @Success 200 {object} Response{data=ExtractionStatusResponse} "Extraction status"
// @Router /extract/status/{extraction_id} [get]
func (h *ExtractionHandler) Status(c *gin.Context) {
	RespondOK(c, gin.H{
		"extraction_id": c.Param("extraction_id"),
		"status":        "completed",
	})
}
