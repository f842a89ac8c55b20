package config

import (
	"testing"
	"time"

	kit "threadsample/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	core := root.Prefix("CORE_")
	if got := core.key("QUOTA"); got != "CORE_QUOTA" {
		t.Fatalf("key() = %q, want %q", got, "CORE_QUOTA")
	}
	sampler := core.Prefix("SAMPLER_")
	if got := sampler.Key("SEED"); got != "CORE_SAMPLER_SEED" {
		t.Fatalf("nested Key() = %q, want %q", got, "CORE_SAMPLER_SEED")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  threadsample ")
	got := c.MustString("NAME")
	if got != "threadsample" {
		t.Fatalf("MustString = %q, want %q", got, "threadsample")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_QUOTA", "  200 ")
	if got := c.MustInt("QUOTA"); got != 200 {
		t.Fatalf("MustInt = %d, want %d", got, 200)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_B", "y")
	c.Require("A", "B")

	kit.MustPanic(t, func() { c.Require("A", "C") })
}

func TestRequireWhitespaceIsMissing(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_WS", "   ")
	kit.MustPanic(t, func() { c.Require("WS") })
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_HOST", " https://www.reddit.com ")
	if got := c.MayString("HOST", "x"); got != "https://www.reddit.com" {
		t.Fatalf("MayString value = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want %d", got, 7)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want %d", got, 3)
	}
}

func TestMayInt64(t *testing.T) {
	c := New().Prefix("I64_")
	if got := c.MayInt64("MISSING", 1<<31); got != 1<<31 {
		t.Fatalf("MayInt64 default = %d", got)
	}
	t.Setenv("I64_WINDOW", "4294967296")
	if got := c.MayInt64("WINDOW", 0); got != 1<<32 {
		t.Fatalf("MayInt64 ok = %d, want %d", got, int64(1)<<32)
	}
	t.Setenv("I64_BAD", "2GiB")
	if got := c.MayInt64("BAD", 5); got != 5 {
		t.Fatalf("MayInt64 bad -> default = %d, want 5", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); got != true {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if got := c.MayBool("T", false); got != true {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if got := c.MayBool("BAD", false); got != false {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayTime(t *testing.T) {
	c := New().Prefix("T_")
	def := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := c.MayTime("MISSING", def); !got.Equal(def) {
		t.Fatalf("MayTime default = %v, want %v", got, def)
	}
	t.Setenv("T_END", "2022-07-31T23:59:59Z")
	want := time.Date(2022, 7, 31, 23, 59, 59, 0, time.UTC)
	if got := c.MayTime("END", def); !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("MayTime ok = %v, want %v", got, want)
	}
	t.Setenv("T_OFFSET", "2020-01-01T02:00:00+02:00")
	if got := c.MayTime("OFFSET", def); !got.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("MayTime offset not normalized: %v", got)
	}
	t.Setenv("T_BAD", "2022-07-31")
	if got := c.MayTime("BAD", def); !got.Equal(def) {
		t.Fatalf("MayTime bad -> default expected, got %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"[deleted]", "[removed]"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "[deleted]" || got[1] != "[removed]" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " one, two , ,three ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMayCSVAllEmptyFallsBackToDefault(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"fallback"}
	t.Setenv("CSV_VALS", " , ,  ,")
	got := c.MayCSV("VALS", def)
	if len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")

	if got := c.MayEnum("MISS", "uniform", "uniform", "legacy", "first"); got != "uniform" {
		t.Fatalf("MayEnum default = %q, want %q", got, "uniform")
	}

	t.Setenv("E_POLICY", "Legacy")
	if got := c.MayEnum("POLICY", "uniform", "uniform", "legacy", "first"); got != "Legacy" {
		t.Fatalf("MayEnum allowed value = %q, want %q", got, "Legacy")
	}

	t.Setenv("E_BAD", "weighted")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "uniform", "uniform", "legacy", "first") })
}

func TestMayEnumEmptyDefaultAndMissingEnv(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISSING", "", "json", "console"); got != "" {
		t.Fatalf("MayEnum with empty def and missing env = %q, want empty string", got)
	}
}
