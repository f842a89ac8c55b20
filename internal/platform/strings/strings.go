// Package strings provides byte order mark helpers for the text files the pipeline reads back
package strings

import std "strings"

// BOM is the UTF-8 byte order mark
const BOM = "\ufeff"

// TrimBOM removes one leading byte order mark from s
func TrimBOM(s string) string { return std.TrimPrefix(s, BOM) }

// HasBOM reports whether b starts with a byte order mark
func HasBOM(b []byte) bool { return len(b) >= len(BOM) && string(b[:len(BOM)]) == BOM }

// TrimLine drops a leading byte order mark and surrounding whitespace
func TrimLine(s string) string { return std.TrimSpace(TrimBOM(s)) }
