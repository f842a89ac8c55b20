package archive

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"threadsample/internal/core/normalize"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/logger"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultChunkBytes is how much decompressed data one refill pulls from the codec
	DefaultChunkBytes = 1 << 26
	// DefaultMaxWindow accepts frames compressed with --long=31
	DefaultMaxWindow = 1 << 31
	// MinWindow is the smallest decoder window we accept; anything lower cannot read real dumps
	MinWindow = 1 << 20

	sampleRawMax = 2048 // max bytes of a raw line to log for the sample
)

// Codec names the container detected for a stream
type Codec string

const (
	// CodecPlain is uncompressed NDJSON
	CodecPlain Codec = "plain"
	// CodecGzip is a gzip stream
	CodecGzip Codec = "gzip"
	// CodecZstd is a zstd stream
	CodecZstd Codec = "zstd"
)

var (
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicGzip = []byte{0x1F, 0x8B}
)

// Options tunes the decoder; zero values pick the defaults
type Options struct {
	ChunkBytes int
	MaxWindow  int64
}

func (o Options) withDefaults() (Options, error) {
	if o.ChunkBytes == 0 {
		o.ChunkBytes = DefaultChunkBytes
	}
	if o.MaxWindow == 0 {
		o.MaxWindow = DefaultMaxWindow
	}
	if o.ChunkBytes < 0 {
		return o, perr.WithField(perr.Configf("archive: chunk size %d must be positive", o.ChunkBytes), "chunk_bytes")
	}
	if o.MaxWindow < MinWindow {
		return o, perr.WithField(
			perr.Configf("archive: decoder window %d is below the %d byte floor", o.MaxWindow, MinWindow),
			"max_window",
		)
	}
	return o, nil
}

// Reader yields complete lines from an archive
type Reader struct {
	src     io.ReadCloser
	dec     io.Reader
	release func()
	codec   Codec
	chunk   int

	buf     []byte
	off     int // start of unread data in buf
	scanned int // bytes after off already known to hold no newline
	eof     bool
	err     error

	lines   int
	bytes   int64
	dropped int
	sampled bool // logs exactly one sample raw line per archive
}

// Open opens the archive at path and sniffs its codec
func Open(path string, opts Options) (*Reader, error) {
	if _, err := opts.withDefaults(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		code := perr.ErrorCodeIO
		if errors.Is(err, os.ErrNotExist) {
			code = perr.ErrorCodeConfig
		}
		return nil, perr.WithField(perr.Wrapf(err, code, "archive: open %s", path), "path")
	}
	return NewReader(f, opts)
}

// NewReader wraps r, sniffing zstd or gzip magic bytes and falling back to plain text.
// r is closed by Close, and also when construction fails
func NewReader(r io.ReadCloser, opts Options) (*Reader, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	br := bufio.NewReaderSize(r, 64*1024)
	head, _ := br.Peek(len(magicZstd))

	rd := &Reader{src: r, chunk: opts.ChunkBytes, release: func() {}}
	switch {
	case bytes.HasPrefix(head, magicZstd):
		zr, err := zstd.NewReader(br,
			zstd.WithDecoderMaxWindow(uint64(opts.MaxWindow)),
			zstd.WithDecoderConcurrency(1),
		)
		if err != nil {
			_ = r.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeConfig, "archive: zstd decoder")
		}
		rd.codec, rd.dec, rd.release = CodecZstd, zr, zr.Close
	case bytes.HasPrefix(head, magicGzip):
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = r.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeDecode, "archive: gzip header")
		}
		rd.codec, rd.dec = CodecGzip, gz
		rd.release = func() { _ = gz.Close() }
	default:
		rd.codec, rd.dec = CodecPlain, br
	}
	return rd, nil
}

// Codec reports the detected container
func (rd *Reader) Codec() Codec { return rd.codec }

// Next returns the next complete line with invalid UTF-8 removed; returns io.EOF when done.
// Empty lines are returned as is so callers can count them
func (rd *Reader) Next() (string, error) {
	for {
		if rd.err != nil {
			return "", rd.err
		}
		rest := rd.buf[rd.off:]
		if i := bytes.IndexByte(rest[rd.scanned:], '\n'); i >= 0 {
			end := rd.scanned + i
			raw := rest[:end]
			rd.off += end + 1
			rd.scanned = 0
			rd.lines++
			rd.bytes += int64(end + 1)
			rd.sample(raw)
			return normalize.ValidBytes(raw), nil
		}
		rd.scanned = len(rest)

		if rd.eof {
			if len(rest) > 0 {
				rd.dropped++
				logger.Named("archive").Debug().
					Int("tail_bytes", len(rest)).
					Msg("archive: discarded unterminated final line")
			}
			rd.buf, rd.off, rd.scanned = nil, 0, 0
			rd.err = io.EOF
			return "", io.EOF
		}
		if err := rd.fill(); err != nil {
			rd.err = err
			return "", err
		}
	}
}

// fill compacts the carried partial line to the front and appends up to one chunk of decoded data
func (rd *Reader) fill() error {
	if rd.off > 0 {
		n := copy(rd.buf, rd.buf[rd.off:])
		rd.buf = rd.buf[:n]
		rd.off = 0
	}
	if cap(rd.buf)-len(rd.buf) < rd.chunk {
		grown := make([]byte, len(rd.buf), len(rd.buf)+rd.chunk)
		copy(grown, rd.buf)
		rd.buf = grown
	}
	dst := rd.buf[len(rd.buf) : len(rd.buf)+rd.chunk]
	n := 0
	var err error
	for n < len(dst) && err == nil {
		var m int
		m, err = rd.dec.Read(dst[n:])
		n += m
	}
	rd.buf = rd.buf[:len(rd.buf)+n]
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		rd.eof = true
		return nil
	default:
		return perr.Wrapf(err, perr.ErrorCodeDecode, "archive: %s stream", rd.codec)
	}
}

func (rd *Reader) sample(raw []byte) {
	if rd.sampled || len(raw) == 0 {
		return
	}
	rd.sampled = true
	l := logger.Named("archive")
	l.Debug().
		Str("codec", string(rd.codec)).
		Int("line_bytes", len(raw)).
		Str("sample_raw", truncateUTF8(raw, sampleRawMax)).
		Msg("archive: sample raw line")
}

// Close releases the codec and closes the underlying reader
func (rd *Reader) Close() error {
	if rd.release != nil {
		rd.release()
		rd.release = nil
	}
	if rd.src == nil {
		return nil
	}
	err := rd.src.Close()
	rd.src = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return perr.Wrap(err, perr.ErrorCodeIO, "archive: close")
	}
	return nil
}

// Stats returns lines yielded, decompressed bytes consumed by those lines, and discarded trailing fragments
func (rd *Reader) Stats() (lines int, bytes int64, dropped int) {
	return rd.lines, rd.bytes, rd.dropped
}

// truncateUTF8 returns a string made from b, truncated to at most max bytes,
// backing up to a UTF-8 boundary if needed, and appending an ellipsis if truncated
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	// back up to the start of a rune (0b10xxxxxx indicates continuation byte)
	for i > 0 && (b[i]&0xC0) == 0x80 {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
