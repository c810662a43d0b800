package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFileName reports a name that is empty once cleaned or that tries
// to climb out of its namespace.
var ErrInvalidFileName = errors.New("invalid file name")

// MaxFileNameBytes caps a sanitized name; the extension survives truncation.
const MaxFileNameBytes = 200

// SanitizeFileName turns an uploaded file name into one object key segment.
// The name is NFC-normalized so the same accented title always maps to the
// same key; separators become '_' and control characters are dropped.
func SanitizeFileName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':':
			return '_'
		case r == utf8.RuneError, unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	if strings.TrimSpace(clean) == "" {
		return "", ErrInvalidFileName
	}
	return truncateFileName(clean, MaxFileNameBytes), nil
}

func truncateFileName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > limit/4 {
		ext = ""
	}
	base := name[:len(name)-len(ext)]
	n := limit - len(ext)
	for n > 0 && !utf8.RuneStart(base[n]) {
		n--
	}
	return base[:n] + ext
}
