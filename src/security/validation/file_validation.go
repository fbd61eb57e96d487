package validation

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/username/salesinsight/backend/src/logger"
)

var (
	ErrInvalidFilename = errors.New("invalid file name")
	ErrEmptyFile       = errors.New("file is empty")
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // browsers on Windows label .csv this way
	"text/plain":               true,
	"application/octet-stream": true,
	"":                         true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": false,
}

// ValidateUploadFilename accepts only non-empty names ending in .csv (any case).
func ValidateUploadFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: no file selected", ErrInvalidFilename)
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return fmt.Errorf("%w: only CSV files are allowed", ErrInvalidFilename)
	}
	return nil
}

// RejectionMessage returns the client-facing part of a ValidateUploadFilename error.
func RejectionMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidFilename.Error()+": ")
}

// ValidateClientContentType checks the Content-Type header provided by the client.
// Parameters such as charset are ignored.
func ValidateClientContentType(contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if allowed, exists := AllowedClientContentTypes[mediaType]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for CSV upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes sniffs the first 512 bytes and rejects content
// that is clearly not text, then rewinds the reader.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	allowedDetectedTypes := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true, // legacy code pages often sniff as binary
	}

	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not consistent with a CSV file", detectedContentType)
	}

	logger.L.Debug("File content type (magic bytes) validated", "detectedContentType", detectedContentType)
	return detectedContentType, nil
}
