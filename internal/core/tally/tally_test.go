package tally

import (
	"context"
	"io"
	"testing"
	"time"

	"threadsample/internal/core/classify"
	perr "threadsample/internal/platform/errors"
	kit "threadsample/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

// sliceSource replays fixed lines
type sliceSource struct {
	lines []string
	i     int
	err   error // returned instead of EOF when set
}

func (s *sliceSource) Next() (string, error) {
	if s.i >= len(s.lines) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	s.i++
	return s.lines[s.i-1], nil
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func TestAggregate_HandCounted(t *testing.T) {
	lines := []string{
		kit.CommentFixture{ID: "c1", PostID: "p1", Body: "a", CreatedAt: day(2020, 3, 1)}.JSON(t),
		kit.CommentFixture{ID: "c2", PostID: "p1", Body: "b", CreatedAt: day(2020, 3, 2)}.JSON(t),
		kit.CommentFixture{ID: "c3", PostID: "p1", Body: "c", CreatedAt: day(2020, 3, 31)}.JSON(t),
		kit.CommentFixture{ID: "c4", PostID: "p1", Body: "d", CreatedAt: day(2020, 4, 1)}.JSON(t),
		kit.CommentFixture{ID: "c5", PostID: "p1", Body: "e", CreatedAt: day(2020, 4, 2)}.JSON(t),
		kit.CommentFixture{ID: "c6", PostID: "p2", Body: "[Deleted]", CreatedAt: day(2020, 3, 1)}.JSON(t),
		kit.CommentFixture{ID: "c7", PostID: "p2", Body: "reply", ParentID: "t1_c1", CreatedAt: day(2020, 3, 1)}.JSON(t),
		kit.CommentFixture{ID: "c8", PostID: "p2", Body: "old", CreatedAt: day(2019, 6, 30)}.JSON(t),
		kit.CommentFixture{ID: "c9", PostID: "p2", Body: "ok", CreatedAt: day(2021, 1, 1)}.JSON(t),
		`{"id":"broken"`,
		``,
	}

	table, st, err := Aggregate(context.Background(), &sliceSource{lines: lines}, classify.Default())
	require.NoError(t, err)

	require.Equal(t, 3, table.Count(Key{PostID: "p1", Year: 2020, Month: time.March}))
	require.Equal(t, 2, table.Count(Key{PostID: "p1", Year: 2020, Month: time.April}))
	require.Equal(t, 1, table.Count(Key{PostID: "p2", Year: 2021, Month: time.January}))
	require.Equal(t, 0, table.Count(Key{PostID: "p2", Year: 2020, Month: time.March}))
	require.Equal(t, 3, table.Len())
	require.Equal(t, []string{"p1", "p2"}, table.Posts())

	require.Equal(t, Stats{
		Lines:       11,
		Malformed:   2,
		Removed:     1,
		NotTopLevel: 1,
		OutOfWindow: 1,
		Counted:     6,
	}, st)
}

func TestAggregate_WindowEndInclusive(t *testing.T) {
	lines := []string{
		kit.CommentFixture{ID: "c1", PostID: "p1", Body: "a", CreatedAt: day(2022, 7, 31)}.JSON(t),
		kit.CommentFixture{ID: "c2", PostID: "p1", Body: "b", CreatedAt: time.Date(2022, 7, 31, 23, 59, 59, 0, time.UTC)}.JSON(t),
		kit.CommentFixture{ID: "c3", PostID: "p1", Body: "c", CreatedAt: time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)}.JSON(t),
	}
	src := &sliceSource{lines: lines}
	table, _, err := Aggregate(context.Background(), src, classify.Default())
	require.NoError(t, err)
	require.Equal(t, 2, table.Count(Key{PostID: "p1", Year: 2022, Month: time.July}))
	require.Equal(t, 0, table.Count(Key{PostID: "p1", Year: 2022, Month: time.August}))
}

func TestAggregate_SourceErrorPropagates(t *testing.T) {
	src := &sliceSource{lines: []string{"{}"}, err: perr.Decodef("zstd: corrupt block")}
	_, st, err := Aggregate(context.Background(), src, classify.Default())
	require.True(t, perr.IsCode(err, perr.ErrorCodeDecode))
	e, _ := perr.As(err)
	require.Equal(t, "tally", e.Op())
	require.Equal(t, 1, st.Lines)
}

func TestAggregate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Aggregate(ctx, &sliceSource{lines: []string{"{}"}}, classify.Default())
	require.True(t, perr.IsCode(err, perr.ErrorCodeCanceled))
}

func TestAggregator_Progress(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "{}"
	}
	var calls []int
	a := Aggregator{
		Classifier:    classify.Default(),
		ProgressEvery: 4,
		Progress:      func(s Stats) { calls = append(calls, s.Lines) },
	}
	_, _, err := a.Run(context.Background(), &sliceSource{lines: lines})
	require.NoError(t, err)
	require.Equal(t, []int{4, 8}, calls)
}

func TestKeyOf_UsesUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	k := KeyOf("p", time.Date(2020, 3, 31, 22, 0, 0, 0, est))
	require.Equal(t, Key{PostID: "p", Year: 2020, Month: time.April}, k)
}
