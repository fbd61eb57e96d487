package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/salesinsight/backend/src/models"
)

func row(name, price string) models.StandardizedRow {
	return models.StandardizedRow{
		models.FieldName:     name,
		models.FieldPrice:    price,
		models.FieldQuantity: "1",
		models.FieldDate:     "2023-01-01",
		models.FieldRegion:   "Центр",
		models.FieldDiscount: "5",
	}
}

func TestWriteStandardized(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store := NewFileStore(dir)

	path, err := store.WriteStandardized("standardized_sales.csv", []models.StandardizedRow{row("Чай, зелёный", "10")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "standardized_sales.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,price,quantity,date,region\n\"Чай, зелёный\",10,1,2023-01-01,Центр\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriteStandardizedReplacesExisting(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.WriteStandardized("standardized_a.csv", []models.StandardizedRow{row("first", "1"), row("first", "2")})
	require.NoError(t, err)
	path, err := store.WriteStandardized("standardized_a.csv", []models.StandardizedRow{row("second", "3")})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,price,quantity,date,region\nsecond,3,1,2023-01-01,Центр\n", string(content))
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, store.EnsureDir())
	require.NoError(t, store.EnsureDir())
}

func TestPathRejectsTraversal(t *testing.T) {
	store := NewFileStore(t.TempDir())
	for _, name := range []string{"", "../x.csv", "a/b.csv", ".hidden.csv", ".."} {
		_, err := store.Path(name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestStat(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Stat("missing.csv")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.WriteStandardized("present.csv", []models.StandardizedRow{row("a", "1")})
	require.NoError(t, err)
	info, err := store.Stat("present.csv")
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
