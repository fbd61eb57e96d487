package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/username/salesinsight/backend/src/logger"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoData is returned when a file has no header or no data rows.
var ErrNoData = errors.New("file is empty or contains no data")

// DecodedText is file content converted to UTF-8.
type DecodedText struct {
	Text     string
	Encoding string
}

type encodingCandidate struct {
	name string
	enc  encoding.Encoding
}

// legacyCandidates are tried in order when the bytes are not valid UTF-8.
// Ties go to the earlier entry.
var legacyCandidates = []encodingCandidate{
	{"windows-1251", charmap.Windows1251},
	{"koi8-r", charmap.KOI8R},
	{"windows-1252", charmap.Windows1252},
}

// mostlyUTF8Ratio is how many well-formed multi-byte sequences must stand
// behind each invalid byte for the content to still count as UTF-8.
const mostlyUTF8Ratio = 10

// DecodeCSVBytes converts raw upload bytes to UTF-8. Detection is best effort:
// a BOM or a declared charset is trusted, valid UTF-8 is kept as is, UTF-8
// with a few stray bytes keeps its text and loses only those bytes, and
// anything else is scored against common Cyrillic and Western code pages.
// Bytes that cannot be decoded become U+FFFD; decoding never fails.
func DecodeCSVBytes(data []byte, contentType string) DecodedText {
	if len(data) == 0 {
		return DecodedText{Encoding: "utf-8"}
	}

	if enc, name, certain := charset.DetermineEncoding(data, contentType); certain && enc != nil {
		return decodeWith(data, enc, name)
	}

	if utf8.Valid(data) {
		return decodeWith(data, xunicode.UTF8, "utf-8")
	}

	if valid, invalid := countUTF8Sequences(data); valid >= invalid*mostlyUTF8Ratio {
		logger.L.Warn("Content is UTF-8 with invalid bytes, replacing them", "validSequences", valid, "invalidBytes", invalid)
		return decodeWith(data, xunicode.UTF8, "utf-8")
	}

	best := legacyCandidates[0]
	bestText := ""
	bestScore := 0
	for i, c := range legacyCandidates {
		text := decodeWith(data, c.enc, c.name).Text
		score := scoreDecoded(text)
		if i == 0 || score > bestScore {
			best, bestText, bestScore = c, text, score
		}
	}
	logger.L.Debug("Detected legacy encoding", "encoding", best.name, "score", bestScore)
	return DecodedText{Text: bestText, Encoding: best.name}
}

// countUTF8Sequences counts well-formed multi-byte UTF-8 sequences and bytes
// that do not start one. ASCII is ignored: it reads the same in every candidate.
func countUTF8Sequences(data []byte) (valid, invalid int) {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		switch {
		case r == utf8.RuneError && size == 1:
			invalid++
		case size > 1:
			valid++
		}
		data = data[size:]
	}
	return valid, invalid
}

func decodeWith(data []byte, enc encoding.Encoding, name string) DecodedText {
	r := transform.NewReader(bytes.NewReader(data), xunicode.BOMOverride(enc.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		logger.L.Warn("Decoding error, replacing undecodable bytes", "encoding", name, "error", err)
		out = data
	}
	return DecodedText{Text: strings.ToValidUTF8(string(out), "\uFFFD"), Encoding: name}
}

// scoreDecoded rewards lowercase non-ASCII letters and penalizes patterns that
// show up when text is decoded with the wrong code page: an uppercase letter
// right after a lowercase one, or Cyrillic and Latin letters inside one word.
func scoreDecoded(s string) int {
	score := 0
	var prev rune
	for _, r := range s {
		if r == utf8.RuneError {
			score -= 3
		}
		if unicode.IsLetter(r) {
			if r > unicode.MaxASCII && unicode.IsLower(r) {
				score++
			}
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				score -= 2
			}
			if unicode.IsLetter(prev) && unicode.Is(unicode.Cyrillic, r) != unicode.Is(unicode.Cyrillic, prev) {
				score -= 2
			}
		}
		prev = r
	}
	return score
}

// CSVTable is a parsed file: the header line and the data records after it.
type CSVTable struct {
	Headers   []string
	Records   [][]string
	Delimiter rune
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// SniffDelimiter picks the candidate delimiter that occurs most often outside
// quotes on the first line. Comma wins ties.
func SniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}
	counts := make(map[rune]int)
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}
	best := ','
	for _, d := range delimiterCandidates {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// ParseCSV reads a header line followed by data records. Records may be
// shorter or longer than the header. Empty lines are skipped, so data row
// numbers count non-empty lines only. A file with no data rows yields ErrNoData.
func ParseCSV(text string) (*CSVTable, error) {
	text = strings.TrimPrefix(text, utf8BOM)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoData
	}

	delimiter := SniffDelimiter(text)
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}

	return &CSVTable{Headers: headers, Records: records, Delimiter: delimiter}, nil
}
