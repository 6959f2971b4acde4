package utils

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

var (
	// ImageExtensions are accepted for catalog product images
	ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}
	// AttachmentExtensions are accepted for staff reply attachments
	AttachmentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".webp", ".doc", ".docx", ".xls", ".xlsx", ".csv", ".txt"}
	// LogoExtensions are accepted for logos uploaded with a quote request
	LogoExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".svg", ".pdf", ".ai", ".eps"}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile checks a catalog image upload
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	return ValidateUpload(fileHeader, ImageExtensions)
}

// ValidateUpload checks size and extension against allowed
func ValidateUpload(fileHeader *multipart.FileHeader, allowed []string) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(allowed, ", ")),
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename strips directories and unusual characters from an uploaded name
func SafeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}

// ContentType returns the upload's declared type, falling back to the extension
func ContentType(fileHeader *multipart.FileHeader) string {
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ProductImageKey builds products/<slug>/<slug>-<YYYYMMDD-HHMMSS>-<id8>.<ext>
func ProductImageKey(productSlug, filename string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s-%s-%s.%s", productSlug, now.Format("20060102-150405"), id, ext)
	return path.Join("products", productSlug, name)
}

// DatedKey builds <prefix>/<YYYY>/<MM>/<uuid>-<safe name>
func DatedKey(prefix, filename string, now time.Time) string {
	return path.Join(prefix, now.Format("2006"), now.Format("01"), uuid.NewString()+"-"+SafeFilename(filename))
}
