// Package csvout writes the submission and sampled comment tables and reads the submission table back.
// Records end in CRLF and fields are quoted only when needed. Every writer hashes the exact bytes it
// emits so two runs can be compared from their log lines alone
package csvout

import (
	"fmt"
	"io"

	ptime "threadsample/internal/platform/time"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultLinkHost prefixes comment permalinks
	DefaultLinkHost = "https://www.reddit.com"
	// DefaultAuthorPrefix prefixes author names
	DefaultAuthorPrefix = "u/"
	// TimeLayout is the minute-resolution UTC layout used in the created columns
	TimeLayout = ptime.Minute
)

// Summary describes a finished table
type Summary struct {
	Rows     int
	Bytes    int64
	Checksum uint64 // xxhash64 of every byte written, BOM included
}

// Hex renders the checksum as 16 hex digits
func (s Summary) Hex() string { return fmt.Sprintf("%016x", s.Checksum) }

// digestWriter forwards writes to w while hashing and counting them
type digestWriter struct {
	w     io.Writer
	h     *xxhash.Digest
	bytes int64
}

func newDigestWriter(w io.Writer) *digestWriter {
	return &digestWriter{w: w, h: xxhash.New()}
}

func (d *digestWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	_, _ = d.h.Write(p[:n])
	d.bytes += int64(n)
	return n, err
}

func (d *digestWriter) summary(rows int) Summary {
	return Summary{Rows: rows, Bytes: d.bytes, Checksum: d.h.Sum64()}
}

// Checksum hashes r the same way the writers do, for verifying a table on disk
func Checksum(r io.Reader) (Summary, error) {
	h := xxhash.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Bytes: n, Checksum: h.Sum64()}, nil
}
