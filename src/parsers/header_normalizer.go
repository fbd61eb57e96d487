package parsers

import (
	"strings"

	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/models"
)

const utf8BOM = "\ufeff"

// LookupHeader resolves a raw header to its canonical field.
// Matching is exact after lowercasing and trimming surrounding whitespace.
func LookupHeader(header string) (models.CanonicalField, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, utf8BOM)))
	field, ok := headerSynonyms[key]
	return field, ok
}

// DuplicateHeader records a column that resolved to a field already claimed by an earlier column.
type DuplicateHeader struct {
	Header   string
	Field    models.CanonicalField
	Kept     string
	Position int
}

// HeaderMapping binds column positions of one file to canonical fields.
// The first column resolving to a field wins; later columns for the same field are ignored.
type HeaderMapping struct {
	headers    []string
	fields     map[int]models.CanonicalField
	columns    []models.CanonicalField
	Duplicates []DuplicateHeader
	Unmatched  []string
}

// NewHeaderMapping resolves every header once so rows can be mapped by index.
func NewHeaderMapping(headers []string) *HeaderMapping {
	m := &HeaderMapping{
		headers: headers,
		fields:  make(map[int]models.CanonicalField),
	}
	claimedBy := make(map[models.CanonicalField]string)

	for i, header := range headers {
		field, ok := LookupHeader(header)
		if !ok {
			m.Unmatched = append(m.Unmatched, header)
			continue
		}
		if kept, taken := claimedBy[field]; taken {
			m.Duplicates = append(m.Duplicates, DuplicateHeader{Header: header, Field: field, Kept: kept, Position: i})
			logger.L.Warn("Duplicate column for canonical field, keeping the first one",
				"field", field, "kept", kept, "ignored", header, "position", i)
			continue
		}
		claimedBy[field] = header
		m.fields[i] = field
		m.columns = append(m.columns, field)
	}

	if len(m.Unmatched) > 0 {
		logger.L.Debug("Dropping unrecognized columns", "headers", m.Unmatched)
	}
	return m
}

// Columns returns the recognized fields in the order their columns appear in the input.
func (m *HeaderMapping) Columns() []models.CanonicalField {
	out := make([]models.CanonicalField, len(m.columns))
	copy(out, m.columns)
	return out
}

// Apply maps one positional record. Values are trimmed; cells missing from a
// short record are treated as empty.
func (m *HeaderMapping) Apply(record []string) models.StandardizedRow {
	row := make(models.StandardizedRow, len(m.fields))
	for i, field := range m.fields {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row[field] = value
	}
	return row
}

// StandardizeRow maps a header-keyed row using the column order the mapping was built from.
func (m *HeaderMapping) StandardizeRow(raw models.RawRow) models.StandardizedRow {
	record := make([]string, len(m.headers))
	for i, h := range m.headers {
		record[i] = raw[h]
	}
	return m.Apply(record)
}

// StandardizeRows normalizes header-keyed rows that share the given header order.
func StandardizeRows(headers []string, rows []models.RawRow) []models.StandardizedRow {
	mapping := NewHeaderMapping(headers)
	out := make([]models.StandardizedRow, 0, len(rows))
	for _, raw := range rows {
		out = append(out, mapping.StandardizeRow(raw))
	}
	return out
}
