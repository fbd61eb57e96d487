package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/salesinsight/backend/src/models"
)

var (
	// ErrValidationFailed is wrapped by every content validation error.
	ErrValidationFailed = errors.New("validation failed")
	// ErrEmptyDataset means no rows were left after header normalization.
	ErrEmptyDataset = fmt.Errorf("%w: file is empty after standardization", ErrValidationFailed)
)

// MissingColumnsError names the required fields absent from the first row.
type MissingColumnsError struct {
	Missing []models.CanonicalField
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

func (e *MissingColumnsError) Unwrap() error { return ErrValidationFailed }

// EmptyValueError points at the first row with an empty required value. Row is 1-based.
type EmptyValueError struct {
	Row   int
	Field models.CanonicalField
}

func (e *EmptyValueError) Error() string {
	return fmt.Sprintf("empty value in column %q, row %d", e.Field, e.Row)
}

func (e *EmptyValueError) Unwrap() error { return ErrValidationFailed }

// CheckRequiredColumns checks the schema against the first row only.
// Every row shares the header line, so the first row is representative.
func CheckRequiredColumns(rows []models.StandardizedRow) error {
	if len(rows) == 0 {
		return ErrEmptyDataset
	}
	var missing []models.CanonicalField
	for _, field := range models.RequiredFields {
		if _, ok := rows[0][field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing}
	}
	return nil
}

// CheckEmptyValues stops at the first row holding an empty required value.
// Fields are checked in RequiredFields order within a row.
func CheckEmptyValues(rows []models.StandardizedRow) error {
	for i, row := range rows {
		for _, field := range models.RequiredFields {
			if strings.TrimSpace(row[field]) == "" {
				return &EmptyValueError{Row: i + 1, Field: field}
			}
		}
	}
	return nil
}

// ValidateRows runs the schema check followed by the completeness check.
func ValidateRows(rows []models.StandardizedRow) error {
	if err := CheckRequiredColumns(rows); err != nil {
		return err
	}
	return CheckEmptyValues(rows)
}
