// Package reservoir draws a fixed-size sample of top-level comments for each target submission.
//
// Only comments created in the same UTC month as their submission are eligible. Targets that end
// the scan with fewer than K eligible comments are dropped from the output entirely. The sampler
// is deterministic for a given Rand and record order, so a fixed seed reproduces a run byte for byte
package reservoir

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sort"
	"time"

	"threadsample/internal/core/classify"
	"threadsample/internal/core/record"
	perr "threadsample/internal/platform/errors"
)

const (
	// DefaultK is the number of comments kept per submission
	DefaultK = 3
	// DefaultSeed seeds the default Rand
	DefaultSeed = 42

	ctxEvery = 1024
)

// Policy selects how a full reservoir treats further eligible comments
type Policy string

const (
	// PolicyUniform is Algorithm R: every eligible comment ends up retained with probability K/seen
	PolicyUniform Policy = "uniform"
	// PolicyLegacy draws j in [0, K] regardless of how many comments were seen and replaces slot j when j < K.
	// It is the default and reproduces the published samples
	PolicyLegacy Policy = "legacy"
	// PolicyFirst keeps the first K eligible comments and never draws
	PolicyFirst Policy = "first"
)

// Policies lists the accepted policy names
var Policies = []Policy{PolicyUniform, PolicyLegacy, PolicyFirst}

// Valid reports whether p is a known policy
func (p Policy) Valid() bool {
	for _, q := range Policies {
		if p == q {
			return true
		}
	}
	return false
}

// Rand is the randomness the sampler consumes; *math/rand.Rand satisfies it
type Rand interface {
	Intn(n int) int
}

// NewRand returns a math/rand source seeded once with seed
func NewRand(seed int64) Rand { return rand.New(rand.NewSource(seed)) }

// Month is the UTC month a target submission was created in
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC month of t
func MonthOf(t time.Time) Month {
	y, m, _ := t.UTC().Date()
	return Month{Year: y, Month: m}
}

// Row is one sampled comment
type Row struct {
	PostID  string
	Comment record.Comment
}

// Result holds the sampled rows ordered by comment creation time
type Result struct {
	Rows     []Row
	Complete []string // targets that reached K, in target order
	Short    []string // targets dropped for having fewer than K eligible comments, in target order
}

// Stats describes one sampling pass
type Stats struct {
	Lines        int
	Malformed    int
	Removed      int
	NotTopLevel  int
	NotTarget    int
	OutOfWindow  int
	WrongMonth   int
	Qualified    int
	Replaced     int
	Discarded    int
	Satisfied    int
	StoppedEarly bool
}

// Sampler draws up to K comments per target
type Sampler struct {
	K         int
	Policy    Policy
	Rand      Rand // nil means NewRand(DefaultSeed)
	EarlyStop bool // stop once every target holds K comments; only valid with PolicyFirst

	Progress      func(Stats)
	ProgressEvery int
}

// New returns a Sampler with the default size, policy and seed
func New() Sampler {
	return Sampler{K: DefaultK, Policy: PolicyLegacy}
}

// Validate checks the sampler configuration
func (s Sampler) Validate() error {
	if s.K < 1 {
		return perr.WithField(perr.Validationf("reservoir: k must be at least 1, got %d", s.K), "k")
	}
	if !s.Policy.Valid() {
		return perr.WithField(perr.Validationf("reservoir: unknown policy %q", s.Policy), "policy")
	}
	if s.EarlyStop && s.Policy != PolicyFirst {
		return perr.WithField(
			perr.Validationf("reservoir: early stop would change the output of the %s policy", s.Policy),
			"early_stop",
		)
	}
	return nil
}

type slotState struct {
	order int
	month Month
	items []record.Comment
	seen  int
}

// Sample scans src once. targets fixes output tie order; duplicates after the first are ignored.
// months must hold the creation month of every target; a missing entry fails before any line is read
func (s Sampler) Sample(
	ctx context.Context,
	src record.LineSource,
	targets []string,
	months map[string]Month,
	cls classify.Classifier,
) (Result, Stats, error) {
	var st Stats
	if err := s.Validate(); err != nil {
		return Result{}, st, err
	}
	rng := s.Rand
	if rng == nil {
		rng = NewRand(DefaultSeed)
	}

	state := make(map[string]*slotState, len(targets))
	order := make([]string, 0, len(targets))
	for _, id := range targets {
		if _, dup := state[id]; dup {
			continue
		}
		m, ok := months[id]
		if !ok {
			return Result{}, st, perr.WithField(perr.NotFoundf("reservoir: no submission metadata for target %q", id), "post_id")
		}
		state[id] = &slotState{order: len(order), month: m, items: make([]record.Comment, 0, s.K)}
		order = append(order, id)
	}

	if err := s.scan(ctx, src, state, cls, rng, &st); err != nil {
		return Result{}, st, err
	}
	return s.collect(order, state), st, nil
}

func (s Sampler) scan(
	ctx context.Context,
	src record.LineSource,
	state map[string]*slotState,
	cls classify.Classifier,
	rng Rand,
	st *Stats,
) error {
	if len(state) == 0 && s.EarlyStop {
		st.StoppedEarly = true
		return nil
	}
	for {
		if st.Lines%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return perr.Canceled(err, "sample")
			}
		}
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return perr.WithOp(err, "sample")
		}
		st.Lines++
		if s.Progress != nil && s.ProgressEvery > 0 && st.Lines%s.ProgressEvery == 0 {
			s.Progress(*st)
		}

		cm, ok := record.ParseComment([]byte(line))
		if !ok {
			st.Malformed++
			continue
		}
		switch cls.Live(cm) {
		case classify.RemovedOrDeleted:
			st.Removed++
			continue
		case classify.NotTopLevel:
			st.NotTopLevel++
			continue
		}
		slot, ok := state[cm.PostID()]
		if !ok {
			st.NotTarget++
			continue
		}
		created := cm.Created()
		if !cls.InWindow(created) {
			st.OutOfWindow++
			continue
		}
		if !classify.SameMonth(created, slot.month.Year, slot.month.Month) {
			st.WrongMonth++
			continue
		}

		st.Qualified++
		if s.offer(slot, cm, rng, st) && s.EarlyStop && st.Satisfied == len(state) {
			st.StoppedEarly = true
			return nil
		}
	}
}

// offer applies one eligible comment to slot and reports whether it just became full
func (s Sampler) offer(slot *slotState, cm record.Comment, rng Rand, st *Stats) bool {
	slot.seen++
	if len(slot.items) < s.K {
		slot.items = append(slot.items, cm)
		if len(slot.items) == s.K {
			st.Satisfied++
			return true
		}
		return false
	}

	var j int
	switch s.Policy {
	case PolicyFirst:
		st.Discarded++
		return false
	case PolicyLegacy:
		j = rng.Intn(s.K + 1)
	default:
		j = rng.Intn(slot.seen)
	}
	if j < s.K {
		slot.items[j] = cm
		st.Replaced++
	} else {
		st.Discarded++
	}
	return false
}

// collect emits full reservoirs in target order then stable sorts by creation time
func (s Sampler) collect(order []string, state map[string]*slotState) Result {
	var res Result
	for _, id := range order {
		slot := state[id]
		if len(slot.items) < s.K {
			res.Short = append(res.Short, id)
			continue
		}
		res.Complete = append(res.Complete, id)
		for _, cm := range slot.items {
			res.Rows = append(res.Rows, Row{PostID: id, Comment: cm})
		}
	}
	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].Comment.CreatedUTC < res.Rows[j].Comment.CreatedUTC
	})
	return res
}
