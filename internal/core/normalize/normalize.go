// Package normalize holds the small text transforms shared by the decoder, the classifier and the writers
// Transforms
// 1 Valid drops invalid UTF-8 bytes
// 2 FoldKey trims and Unicode case folds a value for set membership
// 3 Flatten replaces embedded line feeds with single spaces for one-row CSV cells
package normalize

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
)

// folders is a pool of case folding transformers; cases.Caser is stateful and not safe to share
var folders = sync.Pool{
	New: func() any { return cases.Fold() },
}

// Valid returns s with every invalid UTF-8 byte removed
func Valid(s string) string {
	return strings.ToValidUTF8(s, "")
}

// ValidBytes is Valid over a raw line
func ValidBytes(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// FoldKey trims surrounding whitespace and case folds s so "[Deleted] " and "[deleted]" compare equal
func FoldKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if isLowerASCII(s) {
		return s
	}
	c := folders.Get().(transform.Transformer)
	out, _, err := transform.String(c, s)
	c.Reset()
	folders.Put(c)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Flatten replaces each '\n' with one space; other characters, '\r' included, are kept as is
func Flatten(s string) string {
	if strings.IndexByte(s, '\n') < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\n", " ")
}

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
