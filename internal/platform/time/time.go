// Package time contains the minute-resolution UTC timestamps used in the output tables
package time

import "time"

// Minute is the layout of the created columns
const Minute = "2006-01-02 15:04"

// FormatMinute renders t in UTC at minute resolution
func FormatMinute(t time.Time) string { return t.UTC().Format(Minute) }

// ParseMinute parses a created column value as UTC
func ParseMinute(s string) (time.Time, error) { return time.ParseInLocation(Minute, s, time.UTC) }
