package csvout

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"threadsample/internal/core/normalize"
	"threadsample/internal/core/record"
	perr "threadsample/internal/platform/errors"
	ptime "threadsample/internal/platform/time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// SubmissionHeader is the column order of the submission table
	SubmissionHeader = []string{"id", "author", "created", "score", "num_comments", "title", "selftext_or_url"}
	// CommentHeader is the column order of the sampled comment table
	CommentHeader = []string{"post_id", "created", "author", "score", "link", "body", "post_text"}
)

// Format holds the presentation knobs shared by both tables
type Format struct {
	AuthorPrefix string
	LinkHost     string
	BOM          bool // only honored by the comment table
}

// DefaultFormat matches the published tables
func DefaultFormat() Format {
	return Format{AuthorPrefix: DefaultAuthorPrefix, LinkHost: DefaultLinkHost, BOM: true}
}

// table is the shared plumbing: csv record -> CRLF terminator -> optional BOM transform -> digest -> destination.
// Records are rendered with LF and the terminator swapped, so carriage returns and line feeds inside
// fields are written unchanged
type table struct {
	cw     *csv.Writer
	line   bytes.Buffer
	sink   io.Writer
	bom    *transform.Writer
	digest *digestWriter
	rows   int
	closed bool
}

func newTable(w io.Writer, bom bool, header []string) (*table, error) {
	t := &table{digest: newDigestWriter(w)}
	t.sink = t.digest
	if bom {
		t.bom = transform.NewWriter(t.digest, unicode.UTF8BOM.NewEncoder())
		t.sink = t.bom
	}
	t.cw = csv.NewWriter(&t.line)
	if err := t.record(header); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "csvout: write header")
	}
	return t, nil
}

// record renders one row and writes it terminated by CRLF
func (t *table) record(row []string) error {
	t.line.Reset()
	if err := t.cw.Write(row); err != nil {
		return err
	}
	t.cw.Flush()
	if err := t.cw.Error(); err != nil {
		return err
	}
	b := bytes.TrimSuffix(t.line.Bytes(), []byte("\n"))
	if _, err := t.sink.Write(b); err != nil {
		return err
	}
	_, err := io.WriteString(t.sink, "\r\n")
	return err
}

func (t *table) write(row []string) error {
	if t.closed {
		return perr.Internalf("csvout: write after close")
	}
	if err := t.record(row); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "csvout: write row")
	}
	t.rows++
	return nil
}

func (t *table) close() (Summary, error) {
	if t.closed {
		return t.digest.summary(t.rows), nil
	}
	t.closed = true
	if t.bom != nil {
		if err := t.bom.Close(); err != nil {
			return Summary{}, perr.Wrap(err, perr.ErrorCodeIO, "csvout: flush bom writer")
		}
	}
	return t.digest.summary(t.rows), nil
}

// SubmissionWriter writes the submission table as plain UTF-8
type SubmissionWriter struct {
	t   *table
	fmt Format
}

// NewSubmissionWriter writes the header immediately; Close flushes but never closes w
func NewSubmissionWriter(w io.Writer, f Format) (*SubmissionWriter, error) {
	t, err := newTable(w, false, SubmissionHeader)
	if err != nil {
		return nil, err
	}
	return &SubmissionWriter{t: t, fmt: f}, nil
}

// Write appends one submission row
func (sw *SubmissionWriter) Write(s record.Submission) error {
	return sw.t.write([]string{
		s.ID,
		sw.fmt.AuthorPrefix + s.Author,
		ptime.FormatMinute(s.Created()),
		strconv.FormatInt(int64(s.Score), 10),
		strconv.FormatInt(int64(s.NumComments), 10),
		s.Title,
		normalize.Flatten(s.SelftextOrURL()),
	})
}

// Close flushes buffered rows and reports the table summary
func (sw *SubmissionWriter) Close() (Summary, error) { return sw.t.close() }

// CommentWriter writes the sampled comment table, UTF-8 with a byte order mark unless disabled
type CommentWriter struct {
	t   *table
	fmt Format
}

// NewCommentWriter writes the BOM and header immediately; Close flushes but never closes w
func NewCommentWriter(w io.Writer, f Format) (*CommentWriter, error) {
	t, err := newTable(w, f.BOM, CommentHeader)
	if err != nil {
		return nil, err
	}
	return &CommentWriter{t: t, fmt: f}, nil
}

// Write appends one sampled comment; postText is the submission text from the meta table
func (cw *CommentWriter) Write(postID string, c record.Comment, postText string) error {
	return cw.t.write([]string{
		postID,
		ptime.FormatMinute(c.Created()),
		cw.fmt.AuthorPrefix + c.Author,
		strconv.FormatInt(int64(c.Score), 10),
		cw.fmt.LinkHost + c.Permalink,
		normalize.Flatten(c.Body),
		postText,
	})
}

// Close flushes buffered rows and reports the table summary
func (cw *CommentWriter) Close() (Summary, error) { return cw.t.close() }

// created parses a created cell back into UTC
func created(s string) (time.Time, error) {
	return ptime.ParseMinute(s)
}
