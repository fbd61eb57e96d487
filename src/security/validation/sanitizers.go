package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FallbackFilename replaces names that sanitize down to nothing usable,
// such as names written entirely in a non-Latin script.
const FallbackFilename = "upload.csv"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client-supplied name to a safe ASCII file name:
// accents are folded, path separators and whitespace become underscores,
// other characters are dropped and leading or trailing dots and underscores
// are trimmed. The .csv extension is kept; if no base name survives,
// FallbackFilename is returned.
func SanitizeFilename(name string) string {
	folded := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, norm.NFKD.String(name))

	folded = strings.NewReplacer("/", " ", "\\", " ").Replace(folded)
	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")
	folded = strings.Trim(folded, "._")

	ext := filepath.Ext(folded)
	if !strings.EqualFold(ext, ".csv") || len(folded) == len(ext) {
		return FallbackFilename
	}
	return folded
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
