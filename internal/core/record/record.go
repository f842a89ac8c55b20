// Package record models the raw NDJSON records found in community dump archives.
// Only the fields the pipeline consumes are decoded; everything else is ignored.
// Parsing is lenient by contract: a line that is not a JSON object yields ok=false
// and callers skip it without logging, since noisy lines are normal in these dumps
package record

import (
	"bytes"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// LineSource yields raw archive lines and io.EOF at the end; archive.Reader satisfies it
type LineSource interface {
	Next() (string, error)
}

// SubmissionPrefix is the fullname type prefix that marks a submission reference
const SubmissionPrefix = "t3_"

// Comment is a single comment line
type Comment struct {
	ID         string       `json:"id"`
	Author     string       `json:"author"`
	Body       string       `json:"body"`
	LinkID     string       `json:"link_id"`
	ParentID   string       `json:"parent_id"`
	Permalink  string       `json:"permalink"`
	Score      Int          `json:"score"`
	CreatedUTC EpochSeconds `json:"created_utc"`
}

// PostID returns the bare submission id the comment belongs to
func (c Comment) PostID() string {
	if len(c.LinkID) > len(SubmissionPrefix) && c.LinkID[:len(SubmissionPrefix)] == SubmissionPrefix {
		return c.LinkID[len(SubmissionPrefix):]
	}
	return c.LinkID
}

// Created returns the creation time in UTC
func (c Comment) Created() time.Time { return c.CreatedUTC.Time() }

// Submission is a single submission line
type Submission struct {
	ID          string       `json:"id"`
	Author      string       `json:"author"`
	Title       string       `json:"title"`
	Selftext    string       `json:"selftext"`
	URL         string       `json:"url"`
	IsSelf      bool         `json:"is_self"`
	Score       Int          `json:"score"`
	NumComments Int          `json:"num_comments"`
	CreatedUTC  EpochSeconds `json:"created_utc"`
}

// Created returns the creation time in UTC
func (s Submission) Created() time.Time { return s.CreatedUTC.Time() }

// SelftextOrURL is the body text for self posts and the link target otherwise
func (s Submission) SelftextOrURL() string {
	if s.IsSelf {
		return s.Selftext
	}
	return s.URL
}

// ParseComment decodes one line into a Comment
func ParseComment(line []byte) (Comment, bool) {
	var c Comment
	if !decode(line, &c) {
		return Comment{}, false
	}
	return c, true
}

// ParseSubmission decodes one line into a Submission
func ParseSubmission(line []byte) (Submission, bool) {
	var s Submission
	if !decode(line, &s) {
		return Submission{}, false
	}
	return s, true
}

func decode(line []byte, into any) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return false
	}
	return json.Unmarshal(line, into) == nil
}

// EpochSeconds is a unix timestamp that older dumps store as a number and newer ones as a string
type EpochSeconds int64

// UnmarshalJSON accepts 1561939200, 1561939200.0 and "1561939200"; null leaves zero
func (e *EpochSeconds) UnmarshalJSON(b []byte) error {
	n, err := lenientInt(b)
	if err != nil {
		return err
	}
	*e = EpochSeconds(n)
	return nil
}

// Time converts to a UTC time
func (e EpochSeconds) Time() time.Time { return time.Unix(int64(e), 0).UTC() }

// Int is an integer field (score, num_comments) that tolerates string and float encodings
type Int int64

// UnmarshalJSON accepts numbers, floats and numeric strings; null leaves zero
func (i *Int) UnmarshalJSON(b []byte) error {
	n, err := lenientInt(b)
	if err != nil {
		return err
	}
	*i = Int(n)
	return nil
}

func lenientInt(b []byte) (int64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return 0, err
		}
		b = []byte(s)
		if len(b) == 0 {
			return 0, nil
		}
	}
	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}
