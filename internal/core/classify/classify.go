// Package classify holds the pure predicates that decide whether a record takes part in sampling.
// The same Classifier is used by the tally pass and the sampling pass so both agree on what counts
package classify

import (
	"time"

	"threadsample/internal/core/normalize"
	"threadsample/internal/core/record"
)

// DefaultSkip lists the placeholder bodies left behind by moderation and account deletion
var DefaultSkip = []string{"[deleted]", "[removed]"}

// DefaultWindow is the study period, both ends inclusive
var DefaultWindow = Window{
	Start: time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2022, time.July, 31, 23, 59, 59, 0, time.UTC),
}

// SkipSet is a case-insensitive set of sentinel bodies
type SkipSet map[string]struct{}

// NewSkipSet folds every value; blank values are ignored
func NewSkipSet(values ...string) SkipSet {
	s := make(SkipSet, len(values))
	for _, v := range values {
		if k := normalize.FoldKey(v); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Has reports whether body, trimmed and case folded, is in the set
func (s SkipSet) Has(body string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[normalize.FoldKey(body)]
	return ok
}

// IsRemovedOrDeleted reports whether body is a moderation or deletion placeholder
func IsRemovedOrDeleted(body string, skip SkipSet) bool { return skip.Has(body) }

// IsTopLevel reports whether a comment replies directly to its submission
func IsTopLevel(linkID, parentID string) bool {
	return linkID == parentID && len(linkID) > len(record.SubmissionPrefix) &&
		linkID[:len(record.SubmissionPrefix)] == record.SubmissionPrefix
}

// Window is an inclusive UTC time range
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports Start <= t <= End
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Valid reports whether the window is non-empty
func (w Window) Valid() bool { return !w.Start.IsZero() && !w.End.Before(w.Start) }

// SameMonth reports whether t falls in year/month, in UTC
func SameMonth(t time.Time, year int, month time.Month) bool {
	y, m, _ := t.UTC().Date()
	return y == year && m == month
}

// Reason names why a comment was rejected, for pass statistics
type Reason uint8

const (
	// Qualified means the comment passed every check
	Qualified Reason = iota
	// RemovedOrDeleted means the body was a placeholder
	RemovedOrDeleted
	// NotTopLevel means the comment replied to another comment
	NotTopLevel
	// OutOfWindow means the comment was created outside the window
	OutOfWindow
)

// Classifier bundles the sentinel set and the study window
type Classifier struct {
	Skip   SkipSet
	Window Window
}

// New builds a Classifier; an empty skip list disables sentinel filtering
func New(skip []string, w Window) Classifier {
	return Classifier{Skip: NewSkipSet(skip...), Window: w}
}

// Default is the classifier used by the published sample
func Default() Classifier { return New(DefaultSkip, DefaultWindow) }

// Check runs the comment checks in pipeline order and reports the first failure
func (c Classifier) Check(cm record.Comment) Reason {
	if r := c.Live(cm); r != Qualified {
		return r
	}
	if !c.Window.Contains(cm.Created()) {
		return OutOfWindow
	}
	return Qualified
}

// Live runs the content checks of Check without the window, for callers that
// filter on the post id before looking at timestamps
func (c Classifier) Live(cm record.Comment) Reason {
	switch {
	case IsRemovedOrDeleted(cm.Body, c.Skip):
		return RemovedOrDeleted
	case !IsTopLevel(cm.LinkID, cm.ParentID):
		return NotTopLevel
	}
	return Qualified
}

// InWindow reports whether t falls inside the classifier window
func (c Classifier) InWindow(t time.Time) bool { return c.Window.Contains(t) }
