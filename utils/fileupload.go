package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/sejuk-service/aircond-service-api/models"
)

const (
	// MaxFileSize is 50MB in bytes, enough for short job evidence videos
	MaxFileSize = 50 * 1024 * 1024
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateEvidenceFile validates an uploaded completion evidence file
func ValidateEvidenceFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Filename == "" {
		return &FileUploadError{
			Code:    "INVALID_FILENAME",
			Message: "Uploaded file has no name",
		}
	}

	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	return nil
}

// ClassifyFile buckets a filename into image, video, pdf or other based on
// its extension. The classification is stored alongside the file reference
// so viewers know how to render it.
func ClassifyFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return models.FileKindImage
	case ".mp4", ".mov", ".avi", ".webm", ".mkv":
		return models.FileKindVideo
	case ".pdf":
		return models.FileKindPDF
	default:
		return models.FileKindOther
	}
}
