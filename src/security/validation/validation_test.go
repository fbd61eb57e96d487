package validation

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/salesinsight/backend/src/models"
)

func completeRow() models.StandardizedRow {
	return models.StandardizedRow{
		models.FieldName:     "Widget",
		models.FieldPrice:    "10",
		models.FieldQuantity: "2",
		models.FieldDate:     "2023-01-01",
		models.FieldRegion:   "North",
	}
}

func TestCheckRequiredColumnsEmpty(t *testing.T) {
	err := CheckRequiredColumns(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestCheckRequiredColumnsMissing(t *testing.T) {
	row := completeRow()
	delete(row, models.FieldRegion)
	delete(row, models.FieldPrice)

	err := CheckRequiredColumns([]models.StandardizedRow{row})

	var missingErr *MissingColumnsError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []models.CanonicalField{models.FieldPrice, models.FieldRegion}, missingErr.Missing)
	assert.Equal(t, "missing required columns: price, region", err.Error())
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestCheckRequiredColumnsOnlyInspectsFirstRow(t *testing.T) {
	second := completeRow()
	delete(second, models.FieldDate)

	assert.NoError(t, CheckRequiredColumns([]models.StandardizedRow{completeRow(), second}))
}

func TestCheckEmptyValuesFailFast(t *testing.T) {
	rows := []models.StandardizedRow{completeRow(), completeRow(), completeRow(), completeRow()}
	rows[2][models.FieldPrice] = ""
	rows[3][models.FieldName] = ""

	err := CheckEmptyValues(rows)

	var emptyErr *EmptyValueError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, 3, emptyErr.Row)
	assert.Equal(t, models.FieldPrice, emptyErr.Field)
	assert.Equal(t, `empty value in column "price", row 3`, err.Error())
}

func TestCheckEmptyValuesWhitespaceCountsAsEmpty(t *testing.T) {
	row := completeRow()
	row[models.FieldRegion] = "   "
	err := CheckEmptyValues([]models.StandardizedRow{row})

	var emptyErr *EmptyValueError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, 1, emptyErr.Row)
	assert.Equal(t, models.FieldRegion, emptyErr.Field)
}

func TestValidateRowsPasses(t *testing.T) {
	assert.NoError(t, ValidateRows([]models.StandardizedRow{completeRow(), completeRow()}))
}

func TestValidateUploadFilename(t *testing.T) {
	assert.NoError(t, ValidateUploadFilename("sales.csv"))
	assert.NoError(t, ValidateUploadFilename("SALES.CSV"))

	for _, name := range []string{"", "  ", "sales.xlsx", "sales.csv.exe", "csv"} {
		err := ValidateUploadFilename(name)
		assert.True(t, errors.Is(err, ErrInvalidFilename), name)
	}
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("text/csv"))
	assert.NoError(t, ValidateClientContentType("text/csv; charset=windows-1251"))
	assert.NoError(t, ValidateClientContentType(""))
	assert.Error(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Error(t, ValidateClientContentType("image/png"))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	r := bytes.NewReader([]byte("name,price\nA,1\n"))
	detected, err := ValidateFileContentByMagicBytes(r)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", detected)
	assert.Equal(t, int64(0), r.Size()-int64(r.Len()), "reader is rewound")

	_, err = ValidateFileContentByMagicBytes(bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000")))
	assert.Error(t, err)

	_, err = ValidateFileContentByMagicBytes(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"sales.csv":              "sales.csv",
		"My Sales 2023.csv":      "My_Sales_2023.csv",
		"../../etc/passwd.csv":   "etc_passwd.csv",
		"café-report.CSV":        "cafe-report.CSV",
		"продажи.csv":            FallbackFilename,
		".csv":                   FallbackFilename,
		"  report (final).csv  ": "report_final.csv",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "a\tb", StripUnprintable("a\x00\tb\x07"))
}
