package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameRunes = 100

// ErrInvalidFileName is returned when a client file name cannot be used in an object key.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips directories and traversal from a client-supplied name
// and keeps letters, digits, dot, dash and underscore.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "." || s == "/" {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", ErrInvalidFileName
	}
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		ext := filepath.Ext(out)
		keep := maxFileNameRunes - len([]rune(ext))
		if keep < 1 {
			keep = maxFileNameRunes
			ext = ""
		}
		out = string([]rune(strings.TrimSuffix(out, ext))[:keep]) + ext
	}
	return out, nil
}
