package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/model"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/parsers"
	"github.com/username/salesinsight/backend/src/security/validation"
	"github.com/username/salesinsight/backend/src/storage"
)

const successMessage = "file processed successfully"

// IngestionOptions configures where and under which name standardized files land.
type IngestionOptions struct {
	UploadFolder string
	FilePrefix   string
}

type ingestionServiceImpl struct {
	store       *storage.FileStore
	db          *sqlx.DB
	invalidator CacheInvalidator
	prefix      string
}

// NewIngestionService wires the pipeline. db and invalidator may be nil, in
// which case uploads are not registered and no cache is cleared.
func NewIngestionService(opts IngestionOptions, db *sqlx.DB, invalidator CacheInvalidator) IngestionService {
	return &ingestionServiceImpl{
		store:       storage.NewFileStore(opts.UploadFolder),
		db:          db,
		invalidator: invalidator,
		prefix:      opts.FilePrefix,
	}
}

func (s *ingestionServiceImpl) ProcessUpload(ctx context.Context, file UploadedFile) (result *models.UploadResult, err error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Unexpected failure while processing upload", "filename", file.Filename, "panic", rec)
			err = fmt.Errorf("%w: %v", ErrProcessingFailed, rec)
			result = models.ErrorResult(fmt.Sprintf("error processing file: %v", rec))
		}
	}()

	if err := validation.ValidateUploadFilename(file.Filename); err != nil {
		log.Warn("Upload rejected", "filename", file.Filename, "error", err)
		return models.ErrorResult(validation.RejectionMessage(err)), fmt.Errorf("%w: %w", ErrInputRejected, err)
	}
	if file.Content == nil {
		return models.ErrorResult("file not found"), fmt.Errorf("%w: no content", ErrInputRejected)
	}

	data, err := io.ReadAll(file.Content)
	if err != nil {
		return s.fail(log, file, ErrProcessingFailed, err)
	}

	decoded := parsers.DecodeCSVBytes(data, file.ContentType)
	log.Debug("Upload decoded", "filename", file.Filename, "encoding", decoded.Encoding, "bytes", len(data))

	table, err := parsers.ParseCSV(decoded.Text)
	if err != nil {
		if errors.Is(err, parsers.ErrNoData) {
			log.Warn("Upload has no data rows", "filename", file.Filename)
			return models.ErrorResult(err.Error()), fmt.Errorf("%w: %w", ErrParsingFailed, err)
		}
		return s.fail(log, file, ErrParsingFailed, err)
	}

	mapping := parsers.NewHeaderMapping(table.Headers)
	rows := make([]models.StandardizedRow, len(table.Records))
	for i, record := range table.Records {
		rows[i] = mapping.Apply(record)
	}

	if err := validation.ValidateRows(rows); err != nil {
		log.Warn("Upload failed validation", "filename", file.Filename, "error", err)
		return models.ErrorResult(err.Error()), err
	}

	savedAs := s.prefix + validation.SanitizeFilename(file.Filename)
	if _, err := s.store.WriteStandardized(savedAs, rows); err != nil {
		return s.fail(log, file, ErrProcessingFailed, err)
	}

	columns := mapping.Columns()
	upload := &model.Upload{
		ID:               uuid.NewString(),
		OriginalFilename: validation.StripUnprintable(file.Filename),
		SavedAs:          savedAs,
		Columns:          joinColumns(columns),
		RowCount:         len(rows),
		Encoding:         sql.NullString{String: decoded.Encoding, Valid: decoded.Encoding != ""},
	}
	s.register(log, upload)
	if s.invalidator != nil {
		s.invalidator.Invalidate(savedAs)
	}

	log.Info("Upload standardized", "filename", file.Filename, "savedAs", savedAs, "rows", len(rows),
		"encoding", decoded.Encoding, "duration", time.Since(start))

	return &models.UploadResult{
		Status:           models.StatusSuccess,
		Message:          successMessage,
		OriginalFilename: upload.OriginalFilename,
		SavedAs:          savedAs,
		Columns:          columns,
		UploadID:         upload.ID,
		RowCount:         len(rows),
		Encoding:         decoded.Encoding,
	}, nil
}

// register records the upload. The standardized file is already in place, so
// a registry failure is logged rather than failing the upload.
func (s *ingestionServiceImpl) register(log *slog.Logger, upload *model.Upload) {
	if s.db == nil {
		return
	}
	if err := model.InsertUpload(s.db, upload); err != nil {
		log.Error("Failed to register upload", "savedAs", upload.SavedAs, "error", err)
	}
}

func (s *ingestionServiceImpl) fail(log *slog.Logger, file UploadedFile, kind error, cause error) (*models.UploadResult, error) {
	log.Error("Upload processing failed", "filename", file.Filename, "error", cause)
	return models.ErrorResult("error processing file: " + cause.Error()), fmt.Errorf("%w: %w", kind, cause)
}

func joinColumns(columns []models.CanonicalField) string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
