package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"invodex/internal/config"
	"invodex/internal/domain"
	"invodex/internal/port"
)

// DocumentUploadInput is the DTO for document upload requests.
type DocumentUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadService defines the uploaded-document management contract.
type UploadService interface {
	Upload(ctx context.Context, input DocumentUploadInput) (*domain.UploadedDocument, error)
	Status(ctx context.Context, documentID string) (*domain.UploadedDocument, error)
	Validate(input DocumentUploadInput) (string, error)
}

type uploadService struct {
	storage port.ObjectStorage
	cfg     *config.UploadConfig
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(storage port.ObjectStorage, cfg *config.UploadConfig) UploadService {
	return &uploadService{
		storage: storage,
		cfg:     cfg,
	}
}

func (s *uploadService) Upload(ctx context.Context, input DocumentUploadInput) (*domain.UploadedDocument, error) {
	contentType, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	// Seek back to the beginning after magic-byte sniffing
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	documentID := uuid.NewString()
	filename := sanitizeFilename(input.Header.Filename)
	key := documentID + "_" + filename

	log.Printf("uploadService.Upload: storing %s (%s, %d bytes) as %s",
		input.Header.Filename, contentType, input.Header.Size, key)

	err = s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("uploadService.Upload: storage upload failed for %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	return &domain.UploadedDocument{
		DocumentID: documentID,
		Filename:   filename,
		FileSize:   input.Header.Size,
		UploadedAt: time.Now().UTC(),
		Status:     domain.DocumentStatusUploaded,
	}, nil
}

func (s *uploadService) Status(ctx context.Context, documentID string) (*domain.UploadedDocument, error) {
	obj, filename, err := resolveDocument(ctx, s.storage, documentID)
	if err != nil {
		return nil, err
	}
	return &domain.UploadedDocument{
		DocumentID: documentID,
		Filename:   filename,
		FileSize:   obj.Size,
		UploadedAt: obj.LastModified,
		Status:     domain.DocumentStatusUploaded,
	}, nil
}

// Validate runs the upload checks without persisting anything, returning the
// sanitized filename the document would be stored under.
func (s *uploadService) Validate(input DocumentUploadInput) (string, error) {
	if _, err := s.validate(input); err != nil {
		return "", err
	}
	return sanitizeFilename(input.Header.Filename), nil
}

// validate checks extension, size, and sniffed content type, returning the
// canonical content type for the file. The file's read position is left after
// the sniffed bytes.
func (s *uploadService) validate(input DocumentUploadInput) (string, error) {
	fileType, ok := domain.FileTypeForName(input.Header.Filename)
	if !ok {
		return "", domain.ErrUnsupportedFileType
	}

	if input.Header.Size > s.cfg.MaxUploadBytes() {
		return "", domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading file header: %w", err)
	}
	detected := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		return "", domain.ErrUnsupportedFileType
	}

	return domain.AllowedFileTypes[fileType], nil
}

// resolveDocument locates a stored object by document id prefix and splits the
// original filename back out of the key.
func resolveDocument(ctx context.Context, storage port.ObjectStorage, documentID string) (*port.ObjectInfo, string, error) {
	prefix := documentID + "_"
	objects, err := storage.List(ctx, prefix)
	if err != nil {
		return nil, "", fmt.Errorf("listing stored documents: %w", err)
	}
	if len(objects) == 0 {
		return nil, "", domain.ErrNotFound
	}
	obj := objects[0]
	return &obj, strings.TrimPrefix(obj.Key, prefix), nil
}

// sanitizeFilename strips any path components and replaces characters outside
// [A-Za-z0-9._-] so the name is safe inside a flat storage key.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "document"
	}
	return out
}
