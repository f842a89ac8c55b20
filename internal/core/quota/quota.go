// Package quota admits submissions in archive order under a per-month cap
package quota

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"threadsample/internal/core/classify"
	"threadsample/internal/core/record"
	"threadsample/internal/core/tally"
	perr "threadsample/internal/platform/errors"
)

const (
	// DefaultQuota caps admitted submissions per calendar month
	DefaultQuota = 200
	// DefaultThreshold is the minimum same-month top-level comment count
	DefaultThreshold = 3

	ctxEvery = 1024
)

// Bucket is a UTC calendar month
type Bucket struct {
	Year  int
	Month time.Month
}

// BucketOf returns the UTC month of t
func BucketOf(t time.Time) Bucket {
	y, m, _ := t.UTC().Date()
	return Bucket{Year: y, Month: m}
}

// Before orders buckets chronologically
func (b Bucket) Before(o Bucket) bool {
	if b.Year != o.Year {
		return b.Year < o.Year
	}
	return b.Month < o.Month
}

// Buckets holds admitted counts per month
type Buckets struct {
	m map[Bucket]int
}

// Count returns the admitted count for b
func (bs Buckets) Count(b Bucket) int { return bs.m[b] }

// Keys returns the non-empty buckets in chronological order
func (bs Buckets) Keys() []Bucket {
	out := make([]Bucket, 0, len(bs.m))
	for b := range bs.m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Total returns the number of admitted submissions
func (bs Buckets) Total() int {
	n := 0
	for _, c := range bs.m {
		n += c
	}
	return n
}

// Admitted is one submission that passed selection
type Admitted struct {
	Submission record.Submission
	Bucket     Bucket
	Comments   int // same-month qualifying comments from the tally
}

// Stats describes one selection pass
type Stats struct {
	Lines          int
	Malformed      int
	OutOfWindow    int
	BelowThreshold int
	QuotaFull      int
	Admitted       int
}

// Selector runs the admission pass
type Selector struct {
	Quota      int
	Threshold  int
	Classifier classify.Classifier

	Progress      func(Stats)
	ProgressEvery int
}

// New returns a Selector with the default quota and threshold
func New(cls classify.Classifier) Selector {
	return Selector{Quota: DefaultQuota, Threshold: DefaultThreshold, Classifier: cls}
}

// Select scans the whole of src in order. A submission is admitted when it is inside the window,
// its own month holds at least Threshold qualifying comments in counts, and its month bucket is
// below Quota. emit is called once per admission, in archive order; an emit error stops the pass
func (s Selector) Select(ctx context.Context, src record.LineSource, counts tally.Table, emit func(Admitted) error) (Buckets, Stats, error) {
	if s.Quota < 0 || s.Threshold < 0 {
		return Buckets{}, Stats{}, perr.Validationf("quota: quota %d and threshold %d must not be negative", s.Quota, s.Threshold)
	}
	buckets := Buckets{m: make(map[Bucket]int)}
	var st Stats
	for {
		if st.Lines%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return buckets, st, perr.Canceled(err, "select")
			}
		}
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return buckets, st, nil
		}
		if err != nil {
			return buckets, st, perr.WithOp(err, "select")
		}
		st.Lines++
		if s.Progress != nil && s.ProgressEvery > 0 && st.Lines%s.ProgressEvery == 0 {
			s.Progress(st)
		}

		sub, ok := record.ParseSubmission([]byte(line))
		if !ok {
			st.Malformed++
			continue
		}
		at := sub.Created()
		if !s.Classifier.InWindow(at) {
			st.OutOfWindow++
			continue
		}
		n := counts.Count(tally.KeyOf(sub.ID, at))
		if n < s.Threshold {
			st.BelowThreshold++
			continue
		}
		b := BucketOf(at)
		if buckets.m[b] >= s.Quota {
			st.QuotaFull++
			continue
		}
		buckets.m[b]++
		st.Admitted++
		if emit != nil {
			if err := emit(Admitted{Submission: sub, Bucket: b, Comments: n}); err != nil {
				return buckets, st, perr.WithOp(err, "select")
			}
		}
	}
}
