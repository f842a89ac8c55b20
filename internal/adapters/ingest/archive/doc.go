// Package archive streams newline-delimited JSON out of community dump files.
// Dumps are usually single zstd frames built with a long window (2 GiB), so the
// decoder must be told to accept that window explicitly; gzip and plain files are
// sniffed and handled the same way. Lines are cut on the newline byte and then
// repaired leniently, and the unterminated tail of a file is discarded
package archive
