package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/models"
)

var (
	ErrInvalidName = errors.New("invalid stored file name")
	ErrNotFound    = errors.New("stored file not found")
)

// FileStore keeps standardized files in a single flat directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

// EnsureDir creates the upload folder if needed. Calling it repeatedly is safe.
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating upload folder %s: %w", s.dir, err)
	}
	return nil
}

// Path resolves a stored file name, refusing anything that is not a plain
// base name inside the store directory.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Stat returns the file info for name or ErrNotFound.
func (s *FileStore) Stat(name string) (os.FileInfo, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return info, nil
}

// WriteStandardized writes rows under name with the fixed header
// name,price,quantity,date,region. The content goes to a temporary file that
// is renamed into place, so a failed write leaves no partial file and an
// existing file with the same name is replaced whole.
func (s *FileStore) WriteStandardized(name string, rows []models.StandardizedRow) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	records := make([]models.StandardizedRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToRecord()
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.L.Warn("Failed to remove temporary file", "path", tmpName, "error", rmErr)
			}
		}
	}()

	if err := gocsv.Marshal(&records, tmp); err != nil {
		return "", fmt.Errorf("writing standardized rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("flushing standardized file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing standardized file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("moving standardized file into place: %w", err)
	}
	committed = true

	logger.L.Debug("Standardized file written", "path", path, "rows", len(records))
	return path, nil
}
