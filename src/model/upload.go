package model

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrUploadNotFound = errors.New("upload not found")

// Upload is a row in the uploads table: one successfully standardized file.
type Upload struct {
	ID               string         `db:"id" json:"id"`
	OriginalFilename string         `db:"original_filename" json:"original_filename"`
	SavedAs          string         `db:"saved_as" json:"saved_as"`
	Columns          string         `db:"columns" json:"-"`
	RowCount         int            `db:"row_count" json:"row_count"`
	Encoding         sql.NullString `db:"encoding" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// ColumnList splits the stored comma-joined column names.
func (u *Upload) ColumnList() []string {
	if u.Columns == "" {
		return []string{}
	}
	return strings.Split(u.Columns, ",")
}

// InsertUpload stores u, filling in ID and CreatedAt when they are unset.
func InsertUpload(db *sqlx.DB, u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := db.NamedExec(`INSERT INTO uploads (id, original_filename, saved_as, columns, row_count, encoding, created_at)
		VALUES (:id, :original_filename, :saved_as, :columns, :row_count, :encoding, :created_at)`, u)
	return err
}

func GetUploadByID(db *sqlx.DB, id string) (*Upload, error) {
	var u Upload
	err := db.Get(&u, `SELECT id, original_filename, saved_as, columns, row_count, encoding, created_at FROM uploads WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetLatestUploadBySavedAs returns the most recent upload written to savedAs.
func GetLatestUploadBySavedAs(db *sqlx.DB, savedAs string) (*Upload, error) {
	var u Upload
	err := db.Get(&u, `SELECT id, original_filename, saved_as, columns, row_count, encoding, created_at
		FROM uploads WHERE saved_as = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, savedAs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUploads returns the newest uploads first. A limit <= 0 means no limit.
func ListUploads(db *sqlx.DB, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = -1
	}
	uploads := []Upload{}
	err := db.Select(&uploads, `SELECT id, original_filename, saved_as, columns, row_count, encoding, created_at
		FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	return uploads, err
}
