package models

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// UploadResult is returned to the client for every upload attempt.
// Only Status and Message are set on failure.
type UploadResult struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	OriginalFilename string           `json:"original_filename,omitempty"`
	SavedAs          string           `json:"saved_as,omitempty"`
	Columns          []CanonicalField `json:"columns,omitempty"`
	UploadID         string           `json:"upload_id,omitempty"`
	RowCount         int              `json:"row_count,omitempty"`
	Encoding         string           `json:"encoding,omitempty"`
}

// ErrorResult builds a failed UploadResult.
func ErrorResult(message string) *UploadResult {
	return &UploadResult{Status: StatusError, Message: message}
}
