// Package tally counts qualifying top-level comments per submission and calendar month.
// The table it builds is the only input the quota pass needs from the comment archive
package tally

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"threadsample/internal/core/classify"
	"threadsample/internal/core/record"
	perr "threadsample/internal/platform/errors"
)

// ctxEvery is how many lines pass between cancellation checks
const ctxEvery = 1024

// Key identifies one (submission, UTC year, UTC month) cell
type Key struct {
	PostID string
	Year   int
	Month  time.Month
}

// KeyOf builds the cell for a comment of postID created at t
func KeyOf(postID string, t time.Time) Key {
	y, m, _ := t.UTC().Date()
	return Key{PostID: postID, Year: y, Month: m}
}

// Table maps cells to counts; missing cells read as zero
type Table struct {
	m map[Key]int
}

// NewTable returns an empty table
func NewTable() Table { return Table{m: make(map[Key]int)} }

// Inc adds one to k
func (t Table) Inc(k Key) { t.m[k]++ }

// Count returns the count for k, zero when absent
func (t Table) Count(k Key) int { return t.m[k] }

// Len returns the number of non-empty cells
func (t Table) Len() int { return len(t.m) }

// Posts returns the distinct post ids present, sorted
func (t Table) Posts() []string {
	seen := make(map[string]struct{}, len(t.m))
	for k := range t.m {
		seen[k.PostID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Stats describes one aggregation pass
type Stats struct {
	Lines       int
	Malformed   int
	Removed     int
	NotTopLevel int
	OutOfWindow int
	Counted     int
}

// Aggregator runs the counting pass
type Aggregator struct {
	Classifier classify.Classifier
	// Progress, when set, is called every ProgressEvery lines with the running stats
	Progress      func(Stats)
	ProgressEvery int
}

// Aggregate counts src with cls; it is Aggregator{Classifier: cls}.Run
func Aggregate(ctx context.Context, src record.LineSource, cls classify.Classifier) (Table, Stats, error) {
	return Aggregator{Classifier: cls}.Run(ctx, src)
}

// Run scans the whole of src. Unparseable lines, placeholders, replies and comments outside the
// window are skipped; everything else increments its (post, year, month) cell
func (a Aggregator) Run(ctx context.Context, src record.LineSource) (Table, Stats, error) {
	table := NewTable()
	var st Stats
	for {
		if st.Lines%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return table, st, perr.Canceled(err, "tally")
			}
		}
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return table, st, nil
		}
		if err != nil {
			return table, st, perr.WithOp(err, "tally")
		}
		st.Lines++
		if a.Progress != nil && a.ProgressEvery > 0 && st.Lines%a.ProgressEvery == 0 {
			a.Progress(st)
		}

		cm, ok := record.ParseComment([]byte(line))
		if !ok {
			st.Malformed++
			continue
		}
		switch a.Classifier.Check(cm) {
		case classify.RemovedOrDeleted:
			st.Removed++
		case classify.NotTopLevel:
			st.NotTopLevel++
		case classify.OutOfWindow:
			st.OutOfWindow++
		default:
			table.Inc(KeyOf(cm.PostID(), cm.Created()))
			st.Counted++
		}
	}
}
