package domain

import (
	"path/filepath"
	"strings"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// MaxUploadBytes is the upload size ceiling (16 MiB), enforced client-side
// before any network call and again by the server.
const MaxUploadBytes int64 = 16 * 1024 * 1024

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileTypeForName resolves a FileType from a file name's extension.
func FileTypeForName(name string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := AllowedExtensions[ext]
	return ft, ok
}

// DocumentStatus represents the lifecycle of an uploaded document on the
// server. Extraction is synchronous, so stored documents only ever report
// "uploaded"; extracted invoices live in the invoice store.
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "uploaded"
)
