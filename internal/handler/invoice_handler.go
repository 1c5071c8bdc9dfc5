package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invodex/internal/domain"
	"invodex/internal/service"
)

// InvoiceHandler handles invoice browsing and editing endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List stored invoices with pagination and free-text search over invoice number, customer name, and PO number
// @Tags invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Results per page (max 100)" default(20)
// @Param search query string false "Case-insensitive substring filter"
// @Success 200 {object} Response{data=InvoiceListResponse} "One page of invoices"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), service.ListInvoicesInput{
		Page:    page,
		PerPage: perPage,
		Search:  c.Query("search"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"invoices":   invoices,
		"pagination": NewPagination(page, perPage, total),
	})
}

// Get handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Fetch a single invoice with its line items
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update an invoice
// @Description Replace an invoice's fields and line items; missing derived amounts are recomputed
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param invoice body domain.Invoice true "Updated invoice"
// @Success 200 {object} Response{data=domain.Invoice} "Updated invoice"
// @Failure 400 {object} ErrorResponseBody "Malformed body"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var inv domain.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body is not a valid invoice")
		return
	}

	updated, err := h.invoiceService.Update(c.Request.Context(), c.Param("id"), &inv)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, updated)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Description Remove an invoice and its line items
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=MessageResponse} "Invoice deleted"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// Statistics handles GET /api/v1/invoices/statistics
// @Summary Get invoice statistics
// @Description Aggregate counts and totals over the invoice store
// @Tags invoices
// @Produce json
// @Success 200 {object} Response{data=domain.Statistics} "Aggregate statistics"
// @Router /invoices/statistics [get]
func (h *InvoiceHandler) Statistics(c *gin.Context) {
	stats, err := h.invoiceService.Statistics(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

// Export handles POST /api/v1/invoices/export
// @Summary Export invoices to Excel
// @Description Write the full store to a SalesOrderHeader/SalesOrderDetail workbook
// @Tags invoices
// @Produce json
// @Success 200 {object} Response{data=ExportResponse} "Path of the written workbook"
// @Router /invoices/export [post]
func (h *InvoiceHandler) Export(c *gin.Context) {
	path, err := h.invoiceService.Export(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"file_path": path})
}

// Backup handles POST /api/v1/invoices/backup
// @Summary Back up the invoice store
// @Description Snapshot the store into a timestamped backup directory (CSV copies plus an Excel export)
// @Tags invoices
// @Produce json
// @Success 200 {object} Response{data=BackupResponse} "Path of the backup"
// @Router /invoices/backup [post]
func (h *InvoiceHandler) Backup(c *gin.Context) {
	path, err := h.invoiceService.Backup(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"backup_path": path})
}
