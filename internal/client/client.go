// Package client is a typed HTTP client for the invodex REST API. The upload
// pipeline and the CLI talk to the server exclusively through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"invodex/internal/domain"
)

const defaultTimeout = 120 * time.Second

// APIError is a non-success response from the server, decoded from the
// response envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client calls the invodex API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL. A non-positive timeout falls
// back to the default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling invodex API: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding API response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Code:       "UNKNOWN",
			Message:    http.StatusText(resp.StatusCode),
		}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding API data: %w", err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// UploadDocument uploads the file at path as a multipart form and returns the
// stored document.
func (c *Client) UploadDocument(ctx context.Context, path string) (*domain.UploadedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc domain.UploadedDocument
	if err := c.do(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExtractDocument runs extraction on a previously uploaded document.
func (c *Client) ExtractDocument(ctx context.Context, documentID string) (*domain.ExtractionResult, error) {
	var result domain.ExtractionResult
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/extract/"+url.PathEscape(documentID), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOptions selects one page of the invoice listing.
type ListOptions struct {
	Page    int
	PerPage int
	Search  string
}

// Pagination mirrors the server's page metadata.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// InvoicePage is one page of the invoice listing.
type InvoicePage struct {
	Invoices   []domain.Invoice `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

// ListInvoices fetches one page of invoices.
func (c *Client) ListInvoices(ctx context.Context, opts ListOptions) (*InvoicePage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	path := "/api/v1/invoices"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page InvoicePage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAllInvoices pages through the full listing and returns every invoice.
func (c *Client) ListAllInvoices(ctx context.Context, search string) ([]domain.Invoice, error) {
	var all []domain.Invoice
	for page := 1; ; page++ {
		p, err := c.ListInvoices(ctx, ListOptions{Page: page, PerPage: 100, Search: search})
		if err != nil {
			return nil, err
		}
		all = append(all, p.Invoices...)
		if !p.Pagination.HasNext {
			return all, nil
		}
	}
}

// GetInvoice fetches a single invoice by id.
func (c *Client) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/invoices/"+url.PathEscape(id), nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice replaces an invoice and returns the stored version.
func (c *Client) UpdateInvoice(ctx context.Context, id string, inv *domain.Invoice) (*domain.Invoice, error) {
	var updated domain.Invoice
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/invoices/"+url.PathEscape(id), inv, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/invoices/"+url.PathEscape(id), nil, nil)
}

// Statistics fetches aggregate store statistics.
func (c *Client) Statistics(ctx context.Context) (*domain.Statistics, error) {
	var stats domain.Statistics
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/invoices/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExportExcel asks the server to export the store and returns the written path.
func (c *Client) ExportExcel(ctx context.Context) (string, error) {
	var out struct {
		FilePath string `json:"file_path"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/invoices/export", nil, &out); err != nil {
		return "", err
	}
	return out.FilePath, nil
}

// Backup asks the server to back up the store and returns the backup path.
func (c *Client) Backup(ctx context.Context) (string, error) {
	var out struct {
		BackupPath string `json:"backup_path"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/invoices/backup", nil, &out); err != nil {
		return "", err
	}
	return out.BackupPath, nil
}
