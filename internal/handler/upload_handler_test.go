package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invodex/internal/domain"
	"invodex/internal/handler"
	"invodex/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// multipartBody builds a multipart form with a single file field.
func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadHandler_Upload_Success(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	expected := &domain.UploadedDocument{
		DocumentID: "doc-123",
		Filename:   "test.pdf",
		FileSize:   21,
		UploadedAt: time.Now().UTC(),
		Status:     domain.DocumentStatusUploaded,
	}
	mockSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.DocumentUploadInput")).
		Return(expected, nil)

	body, contentType := multipartBody(t, "test.pdf", []byte("%PDF-1.4 test content"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "doc-123", data["document_id"])
	assert.Equal(t, "uploaded", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestUploadHandler_Upload_NoFile(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload", nil)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}

func TestUploadHandler_Upload_UnsupportedType(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestUploadHandler_Upload_FileTooLarge(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrFileTooLarge)

	body, contentType := multipartBody(t, "big.pdf", []byte("%PDF-1.4"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadHandler_Status_Found(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	expected := &domain.UploadedDocument{
		DocumentID: "doc-123",
		Filename:   "invoice.pdf",
		FileSize:   2048,
		Status:     domain.DocumentStatusUploaded,
	}
	mockSvc.On("Status", mock.Anything, "doc-123").Return(expected, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/upload/status/doc-123", nil)
	c.Params = gin.Params{{Key: "document_id", Value: "doc-123"}}

	h.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "invoice.pdf", data["filename"])
}

func TestUploadHandler_Status_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	mockSvc.On("Status", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/upload/status/missing", nil)
	c.Params = gin.Params{{Key: "document_id", Value: "missing"}}

	h.Status(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadHandler_Validate_Valid(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	mockSvc.On("Validate", mock.AnythingOfType("service.DocumentUploadInput")).Return("invoice.pdf", nil)

	body, contentType := multipartBody(t, "invoice.pdf", []byte("%PDF-1.4"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload/validate", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Validate(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "invoice.pdf", data["filename"])
}

func TestUploadHandler_Validate_Invalid(t *testing.T) {
	mockSvc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(mockSvc)

	mockSvc.On("Validate", mock.Anything).Return("", domain.ErrUnsupportedFileType)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload/validate", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Validate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
