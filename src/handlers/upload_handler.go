package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/model"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/parsers"
	"github.com/username/salesinsight/backend/src/security"
	"github.com/username/salesinsight/backend/src/security/validation"
	"github.com/username/salesinsight/backend/src/services"
	"github.com/username/salesinsight/backend/src/storage"
	"github.com/username/salesinsight/backend/src/utils"
)

const defaultUploadListLimit = 50

type UploadHandler struct {
	ingestion      services.IngestionService
	sessions       *security.SessionService
	store          *storage.FileStore
	db             *sqlx.DB
	maxUploadBytes int64
}

// NewUploadHandler serves uploads, downloads and the upload registry. db may be
// nil, in which case the registry endpoint reports an empty list.
func NewUploadHandler(ingestion services.IngestionService, sessions *security.SessionService, uploadFolder string, db *sqlx.DB, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		ingestion:      ingestion,
		sessions:       sessions,
		store:          storage.NewFileStore(uploadFolder),
		db:             db,
		maxUploadBytes: maxUploadBytes,
	}
}

func sendUploadError(w http.ResponseWriter, message string, statusCode int) {
	logger.L.Warn("Sending upload error to client", "message", message, "statusCode", statusCode)
	utils.SendJSON(w, models.ErrorResult(message), statusCode)
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadBytes)
		sendUploadError(w, fmt.Sprintf("failed to parse form or request too large (max %d MB)", h.maxUploadBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		sendUploadError(w, "no file selected", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxUploadBytes {
		log.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadBytes)
		sendUploadError(w, fmt.Sprintf("file too large, max %d MB", h.maxUploadBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
		return
	}

	if err := validation.ValidateUploadFilename(fileHeader.Filename); err != nil {
		log.Warn("Upload rejected by file name", "filename", fileHeader.Filename, "error", err)
		sendUploadError(w, validation.RejectionMessage(err), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		log.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		sendUploadError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		if errors.Is(err, validation.ErrEmptyFile) {
			sendUploadError(w, parsers.ErrNoData.Error(), http.StatusBadRequest)
			return
		}
		log.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		sendUploadError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("Processing upload request", "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	result, err := h.ingestion.ProcessUpload(r.Context(), services.UploadedFile{
		Filename:    fileHeader.Filename,
		ContentType: clientContentType,
		Content:     file,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrInputRejected):
			status = http.StatusBadRequest
		case errors.Is(err, validation.ErrValidationFailed):
			log.Warn("Upload failed data validation", "filename", fileHeader.Filename, "error", err)
			status = http.StatusUnprocessableEntity
		case errors.Is(err, services.ErrParsingFailed):
			log.Warn("Upload failed CSV parsing", "filename", fileHeader.Filename, "error", err)
			status = http.StatusBadRequest
		default:
			log.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
		}
		utils.SendJSON(w, result, status)
		return
	}

	if err := h.sessions.SetCookie(w, result.UploadID, result.SavedAs); err != nil {
		log.Error("Failed to issue session cookie", "savedAs", result.SavedAs, "error", err)
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *UploadHandler) HandleListUploads(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		utils.SendJSON(w, []model.Upload{}, http.StatusOK)
		return
	}
	uploads, err := model.ListUploads(h.db, defaultUploadListLimit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list uploads", "error", err)
		utils.SendJSONError(w, "failed to list uploads", http.StatusInternalServerError)
		return
	}
	if uploads == nil {
		uploads = []model.Upload{}
	}
	utils.SendJSON(w, uploads, http.StatusOK)
}

// HandleDownload serves a standardized file as an attachment.
func (h *UploadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if _, err := h.store.Stat(name); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidName):
			utils.SendJSONError(w, "invalid file name", http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			utils.SendJSONError(w, "file not found", http.StatusNotFound)
		default:
			logger.FromContext(r.Context()).Error("Failed to stat standardized file", "filename", name, "error", err)
			utils.SendJSONError(w, "failed to read file", http.StatusInternalServerError)
		}
		return
	}

	path, _ := h.store.Path(name)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
