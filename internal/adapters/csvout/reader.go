package csvout

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	perr "threadsample/internal/platform/errors"
	strs "threadsample/internal/platform/strings"
)

// Meta is what the sampler needs to know about one selected submission
type Meta struct {
	ID    string
	Year  int
	Month time.Month
	Text  string // title, two spaces, selftext_or_url
}

// MetaText joins title and body the way the comment table's post_text column expects
func MetaText(title, selftextOrURL string) string { return title + "  " + selftextOrURL }

// ReadSubmissionMeta parses a submission table into id -> Meta. A leading BOM is tolerated,
// columns are located by header name and a later duplicate id overwrites an earlier one
func ReadSubmissionMeta(r io.Reader) (map[string]Meta, error) {
	cr, cols, err := openTable(r, "id", "created", "title", "selftext_or_url")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Meta)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "csvout: submission table row %d", line)
		}
		at, err := created(rec[cols["created"]])
		if err != nil {
			return nil, perr.WithField(
				perr.Wrapf(err, perr.ErrorCodeDecode, "csvout: submission table row %d", line), "created")
		}
		id := rec[cols["id"]]
		out[id] = Meta{
			ID:    id,
			Year:  at.Year(),
			Month: at.Month(),
			Text:  MetaText(rec[cols["title"]], rec[cols["selftext_or_url"]]),
		}
	}
}

// ReadSubmissionIDs returns the id column in file order
func ReadSubmissionIDs(r io.Reader) ([]string, error) {
	cr, cols, err := openTable(r, "id")
	if err != nil {
		return nil, err
	}
	var ids []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "csvout: submission table row %d", line)
		}
		ids = append(ids, rec[cols["id"]])
	}
}

func openTable(r io.Reader, required ...string) (*csv.Reader, map[string]int, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(strs.BOM)); err == nil && strs.HasBOM(b) {
		_, _ = br.Discard(len(strs.BOM))
	}
	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, perr.Decodef("csvout: submission table is empty")
	}
	if err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeDecode, "csvout: submission table header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, perr.WithField(perr.Decodef("csvout: submission table has no %q column", name), name)
		}
	}
	return cr, cols, nil
}
