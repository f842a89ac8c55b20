// Package ingest adapts the archive decoder and the local filesystem to the sampling ports
package ingest

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"threadsample/internal/adapters/ingest/archive"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/services/sampling/domain"
)

// archiveOpener adapts archive.Open to domain.ArchiveOpener
type archiveOpener struct {
	opts archive.Options
}

// NewArchiveOpener returns an opener using the given decoder options
func NewArchiveOpener(opts archive.Options) domain.ArchiveOpener { return archiveOpener{opts: opts} }

func (o archiveOpener) Open(path string) (domain.LineReader, error) {
	r, err := archive.Open(path, o.opts)
	if err != nil {
		return nil, err
	}
	return &reader{r: r}, nil
}

type reader struct {
	r *archive.Reader
}

func (r *reader) Next() (string, error) { return r.r.Next() }

func (r *reader) Close() error { return r.r.Close() }

func (r *reader) Stats() domain.ArchiveStats {
	lines, bytes, dropped := r.r.Stats()
	return domain.ArchiveStats{Lines: lines, Bytes: bytes, Dropped: dropped}
}

// osFiles implements domain.Files on the local filesystem
type osFiles struct{}

// NewFiles returns the local filesystem adapter
func NewFiles() domain.Files { return osFiles{} }

func (osFiles) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		code := perr.ErrorCodeIO
		if errors.Is(err, os.ErrNotExist) {
			code = perr.ErrorCodeConfig
		}
		return nil, perr.WithField(perr.Wrapf(err, code, "open %s", path), "path")
	}
	return f, nil
}

// Create truncates or creates path, making parent directories as needed
func (osFiles) Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeIO, "mkdir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeIO, "create %s", path), "path")
	}
	return f, nil
}
