package testkit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec selects the container WriteArchive produces
type Codec string

const (
	// Plain writes uncompressed NDJSON
	Plain Codec = "plain"
	// Gzip writes a gzip member
	Gzip Codec = "gzip"
	// Zstd writes a single zstd frame
	Zstd Codec = "zstd"
)

// WriteArchive writes lines joined by '\n' (each terminated) into a temp file using codec and returns its path.
// tail, when non-empty, is appended without a terminating newline to simulate a truncated final record
func WriteArchive(t *testing.T, codec Codec, lines []string, tail string) string {
	t.Helper()
	var raw bytes.Buffer
	for _, ln := range lines {
		raw.WriteString(ln)
		raw.WriteByte('\n')
	}
	raw.WriteString(tail)
	return WriteArchiveBytes(t, codec, raw.Bytes())
}

// WriteArchiveBytes compresses payload with codec into a temp file and returns its path
func WriteArchiveBytes(t *testing.T, codec Codec, payload []byte) string {
	t.Helper()
	var out bytes.Buffer
	switch codec {
	case Zstd:
		enc, err := zstd.NewWriter(&out, zstd.WithEncoderConcurrency(1))
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		if _, err := enc.Write(payload); err != nil {
			t.Fatalf("zstd write: %v", err)
		}
		if err := enc.Close(); err != nil {
			t.Fatalf("zstd close: %v", err)
		}
	case Gzip:
		gz := gzip.NewWriter(&out)
		if _, err := gz.Write(payload); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
	default:
		out.Write(payload)
	}
	path := filepath.Join(t.TempDir(), "archive."+string(codec))
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteText writes s into a temp file named name and returns its path
func WriteText(t *testing.T, name, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// ReadText returns the file content as a string
func ReadText(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

// CommentFixture describes one comment record in the dump shape
type CommentFixture struct {
	ID        string
	PostID    string // bare submission id, link_id becomes t3_<PostID>
	ParentID  string // full parent reference; empty means top-level (t3_<PostID>)
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
}

// JSON renders the fixture as one NDJSON line
func (c CommentFixture) JSON(t *testing.T) string {
	t.Helper()
	link := "t3_" + c.PostID
	parent := c.ParentID
	if parent == "" {
		parent = link
	}
	author := c.Author
	if author == "" {
		author = "commenter_" + c.ID
	}
	return mustJSON(t, map[string]any{
		"id":          c.ID,
		"author":      author,
		"body":        c.Body,
		"link_id":     link,
		"parent_id":   parent,
		"score":       c.Score,
		"created_utc": c.CreatedAt.Unix(),
		"permalink":   "/r/AskFeminists/comments/" + c.PostID + "/slug/" + c.ID + "/",
	})
}

// SubmissionFixture describes one submission record in the dump shape
type SubmissionFixture struct {
	ID          string
	Author      string
	Title       string
	Selftext    string
	URL         string
	IsSelf      bool
	Score       int
	NumComments int
	CreatedAt   time.Time
}

// JSON renders the fixture as one NDJSON line
func (s SubmissionFixture) JSON(t *testing.T) string {
	t.Helper()
	author := s.Author
	if author == "" {
		author = "poster_" + s.ID
	}
	title := s.Title
	if title == "" {
		title = "Title " + strings.ToUpper(s.ID)
	}
	return mustJSON(t, map[string]any{
		"id":           s.ID,
		"author":       author,
		"title":        title,
		"selftext":     s.Selftext,
		"url":          s.URL,
		"is_self":      s.IsSelf,
		"score":        s.Score,
		"num_comments": s.NumComments,
		"created_utc":  s.CreatedAt.Unix(),
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(b)
}
