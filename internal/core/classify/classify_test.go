package classify

import (
	"testing"
	"time"

	"threadsample/internal/core/record"
)

func TestIsRemovedOrDeleted(t *testing.T) {
	skip := NewSkipSet(DefaultSkip...)
	cases := []struct {
		body string
		want bool
	}{
		{"[deleted]", true},
		{"[removed]", true},
		{"[DELETED]", true},
		{"  [Removed]\n", true},
		{"[deleted] but more", false},
		{"deleted", false},
		{"", false},
		{"a real comment", false},
	}
	for _, tc := range cases {
		if got := IsRemovedOrDeleted(tc.body, skip); got != tc.want {
			t.Fatalf("IsRemovedOrDeleted(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
	if IsRemovedOrDeleted("[deleted]", NewSkipSet()) {
		t.Fatalf("empty skip set should admit everything")
	}
	if len(NewSkipSet(" ", "")) != 0 {
		t.Fatalf("blank values should be ignored")
	}
}

func TestIsTopLevel(t *testing.T) {
	cases := []struct {
		link, parent string
		want         bool
	}{
		{"t3_abc", "t3_abc", true},
		{"t3_abc", "t1_xyz", false},
		{"t3_abc", "t3_other", false},
		{"t1_abc", "t1_abc", false},
		{"abc", "abc", false},
		{"t3_", "t3_", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := IsTopLevel(tc.link, tc.parent); got != tc.want {
			t.Fatalf("IsTopLevel(%q, %q) = %v, want %v", tc.link, tc.parent, got, tc.want)
		}
	}
}

func TestWindow_Boundaries(t *testing.T) {
	w := DefaultWindow
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start inclusive", time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"one second before start", time.Date(2019, 6, 30, 23, 59, 59, 0, time.UTC), false},
		{"end inclusive", time.Date(2022, 7, 31, 23, 59, 59, 0, time.UTC), true},
		{"one second after end", time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC), false},
		{"zero time", time.Unix(0, 0).UTC(), false},
		{"middle", time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.at); got != tc.want {
			t.Fatalf("%s: Contains(%v) = %v, want %v", tc.name, tc.at, got, tc.want)
		}
	}
	if !w.Valid() || (Window{Start: w.End, End: w.Start}).Valid() || (Window{}).Valid() {
		t.Fatalf("Valid() mismatch")
	}
}

func TestSameMonth(t *testing.T) {
	at := time.Date(2020, 3, 31, 23, 59, 59, 0, time.UTC)
	if !SameMonth(at, 2020, time.March) {
		t.Fatalf("expected March 2020")
	}
	if SameMonth(at.Add(time.Second), 2020, time.March) {
		t.Fatalf("April 1st is not March")
	}
	if SameMonth(at, 2021, time.March) {
		t.Fatalf("year must match too")
	}
	// evaluated in UTC regardless of the location attached to t
	est := time.FixedZone("EST", -5*3600)
	if !SameMonth(time.Date(2020, 3, 31, 22, 0, 0, 0, est), 2020, time.April) {
		t.Fatalf("SameMonth must use UTC")
	}
}

func TestClassifier_Check(t *testing.T) {
	c := Default()
	in := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC).Unix()
	out := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	cases := []struct {
		name string
		cm   record.Comment
		want Reason
	}{
		{"qualified", record.Comment{Body: "hi", LinkID: "t3_p", ParentID: "t3_p", CreatedUTC: record.EpochSeconds(in)}, Qualified},
		{"deleted wins first", record.Comment{Body: "[deleted]", LinkID: "t3_p", ParentID: "t1_c", CreatedUTC: record.EpochSeconds(out)}, RemovedOrDeleted},
		{"reply", record.Comment{Body: "hi", LinkID: "t3_p", ParentID: "t1_c", CreatedUTC: record.EpochSeconds(in)}, NotTopLevel},
		{"outside", record.Comment{Body: "hi", LinkID: "t3_p", ParentID: "t3_p", CreatedUTC: record.EpochSeconds(out)}, OutOfWindow},
		{"missing timestamp", record.Comment{Body: "hi", LinkID: "t3_p", ParentID: "t3_p"}, OutOfWindow},
	}
	for _, tc := range cases {
		if got := c.Check(tc.cm); got != tc.want {
			t.Fatalf("%s: Check = %v, want %v", tc.name, got, tc.want)
		}
	}

	// Live ignores the window and agrees with Check on everything else
	for _, tc := range cases {
		want := tc.want
		if want == OutOfWindow {
			want = Qualified
		}
		if got := c.Live(tc.cm); got != want {
			t.Fatalf("%s: Live = %v, want %v", tc.name, got, want)
		}
	}
}
