// Package idlist reads and writes plain text id lists, one submission id per line
package idlist

import (
	"bufio"
	"io"

	perr "threadsample/internal/platform/errors"
	strs "threadsample/internal/platform/strings"
)

// maxLine bounds a single id line
const maxLine = 64 * 1024

// Read returns the trimmed non-blank lines of r in order. Duplicates are kept; callers decide
func Read(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	var ids []string
	for sc.Scan() {
		if id := strs.TrimLine(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "idlist: read")
	}
	return ids, nil
}

// Write emits one id per line, each terminated by '\n'
func Write(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(id); err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "idlist: write")
		}
		if err := bw.WriteByte('\n'); err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "idlist: write")
		}
	}
	if err := bw.Flush(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "idlist: flush")
	}
	return nil
}
