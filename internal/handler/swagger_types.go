package handler

import (
	"invodex/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// BatchExtractRequest represents the batch extraction request body.
type BatchExtractRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000,660e8400-e29b-41d4-a716-446655440001"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service,omitempty" example:"invodex"`
	Version string `json:"version,omitempty" example:"1.0.0"`
	Error   string `json:"error,omitempty" example:"invoice store not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"invoice deleted"`
}

// ValidateUploadResponse represents the upload validation response.
type ValidateUploadResponse struct {
	Valid    bool   `json:"valid" example:"true"`
	Filename string `json:"filename" example:"invoice_march.pdf"`
}

// ExtractionStatusResponse represents the extraction status response.
type ExtractionStatusResponse struct {
	ExtractionID string `json:"extraction_id" example:"extract_550e8400_1714500000"`
	Status       string `json:"status" example:"completed"`
}

// InvoiceListResponse represents one page of invoices.
type InvoiceListResponse struct {
	Invoices   []domain.Invoice `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

// ExportResponse represents the Excel export response.
type ExportResponse struct {
	FilePath string `json:"file_path" example:"data/exported_data_20250401_153000.xlsx"`
}

// BackupResponse represents the backup response.
type BackupResponse struct {
	BackupPath string `json:"backup_path" example:"backups/backup_20250401_153000"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
