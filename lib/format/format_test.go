package format

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	g_error "github.com/phil-mansfield/foamtonumpy/lib/error"
	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
)

func TestIsTimeSpecToken(t *testing.T) {
	tests := []struct {
		tok   string
		valid bool
	}{
		{"", false},
		{"1", true},
		{"0.125", true},
		{"1e-3", true},
		{"a", false},
		{"nan", false},
		{"inf", false},
		{"0.1:0.5", true},
		{":0.5", true},
		{"0.5:", true},
		{":", false},
		{"a:0.5", false},
		{"0.1:b", false},
		{"0.5:0.1", false},
		{"0.1:0.2:0.3", false},
	}

	for i := range tests {
		err := isTimeSpecToken(tests[i].tok)
		if tests[i].valid && err != nil {
			t.Errorf("%d) Expected token '%s' to be valid, but got error '%s'.",
				i, tests[i].tok, err.Error())
		} else if !tests[i].valid && err == nil {
			t.Errorf("%d) Expected token '%s' to be invalid, but got no error.",
				i, tests[i].tok)
		}
	}
}

func TestTokeniseTimeSpec(t *testing.T) {
	tests := []struct {
		spec string
		tok  []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"all", []string{"all"}},
		{"0.1", []string{"0.1"}},
		{"0.1,0.2", []string{"0.1", "0.2"}},
		{"0.1, 0.2:0.3  0.5", []string{"0.1", "0.2:0.3", "0.5"}},
		{",,0.1,", []string{"0.1"}},
	}

	for i := range tests {
		tok := tokeniseTimeSpec(tests[i].spec)
		if len(tok) == 0 && len(tests[i].tok) == 0 {
			continue
		}
		if diff := cmp.Diff(tests[i].tok, tok); diff != "" {
			t.Errorf("%d) tokeniseTimeSpec('%s') mismatch (-want +got):\n%s",
				i, tests[i].spec, diff)
		}
	}
}

func TestTimeRangeContains(t *testing.T) {
	tests := []struct {
		tok string
		x   float64
		in  bool
	}{
		{"0.1", 0.1, true},
		{"0.1", 0.1 + 1e-12, true},
		{"0.1", 0.1000001, false},
		{"0", 1e-13, true},
		{"0", 1e-6, false},
		{"0.1:0.3", 0.1, true},
		{"0.1:0.3", 0.2, true},
		{"0.1:0.3", 0.3, true},
		{"0.1:0.3", 0.3 + 1e-12, true},
		{"0.1:0.3", 0.4, false},
		{":0.3", -100, true},
		{":0.3", 0.31, false},
		{"0.3:", 1e10, true},
		{"0.3:", 0.29, false},
	}

	for i := range tests {
		r := parseTimeSpecToken(tests[i].tok)
		if r.contains(tests[i].x) != tests[i].in {
			t.Errorf("%d) Expected '%s'.contains(%g) = %v, got %v.", i,
				tests[i].tok, tests[i].x, tests[i].in, !tests[i].in)
		}
	}
}

func TestSelect(t *testing.T) {
	times := []foamio.Instant{
		{Name: "0", Value: 0}, {Name: "0.1", Value: 0.1},
		{Name: "0.2", Value: 0.2}, {Name: "0.30000000001", Value: 0.30000000001},
		{Name: "1", Value: 1},
	}

	tests := []struct {
		spec           string
		latest, noZero bool
		names          []string
	}{
		{"", false, false, []string{"0", "0.1", "0.2", "0.30000000001", "1"}},
		{"all", false, false, []string{"0", "0.1", "0.2", "0.30000000001", "1"}},
		{"", true, false, []string{"1"}},
		{"", false, true, []string{"0.1", "0.2", "0.30000000001", "1"}},
		{"all", true, true, []string{"0.1", "0.2", "0.30000000001", "1"}},
		{"0.2", false, false, []string{"0.2"}},
		{"0.3", false, false, []string{"0.30000000001"}},
		{"0.1,1", false, false, []string{"0.1", "1"}},
		{"1 0.1", false, false, []string{"0.1", "1"}},
		{"0.1:0.2", false, false, []string{"0.1", "0.2"}},
		{":0.1", false, false, []string{"0", "0.1"}},
		{":0.1", false, true, []string{"0.1"}},
		{"0", false, true, []string{"0"}},
		{"0.2:", false, false, []string{"0.2", "0.30000000001", "1"}},
		{"0.1:0.2, 0.2 0.1", false, false, []string{"0.1", "0.2"}},
		{"0.1", true, false, []string{"0.1", "1"}},
		{"5:", true, false, []string{"1"}},
	}

	for i := range tests {
		sel, err := Select(tests[i].spec, times, tests[i].latest,
			tests[i].noZero)
		if err != nil {
			t.Errorf("%d) Got error %s.", i, err.Error())
			continue
		}
		if diff := cmp.Diff(tests[i].names, sel.Names()); diff != "" {
			t.Errorf("%d) Select('%s', %v, %v) mismatch (-want +got):\n%s",
				i, tests[i].spec, tests[i].latest, tests[i].noZero, diff)
		}
	}
}

func TestSelectIsRestartable(t *testing.T) {
	times := []foamio.Instant{{Name: "0", Value: 0}, {Name: "1", Value: 1}}
	sel, err := Select("", times, false, false)
	if err != nil {
		t.Fatalf("Got error %s.", err.Error())
	}

	for pass := 0; pass < 2; pass++ {
		n := 0
		for range sel {
			n++
		}
		if n != 2 {
			t.Errorf("%d) Expected 2 times, got %d.", pass, n)
		}
	}
}

func TestSelectNoMatchingTimes(t *testing.T) {
	times := []foamio.Instant{
		{Name: "0", Value: 0}, {Name: "0.1", Value: 0.1},
	}

	tests := []struct {
		spec      string
		times     []foamio.Instant
		noZero    bool
		available int
	}{
		{"0.5", times, false, 2},
		{"0.12", times, false, 2},
		{"0.1000001", times, false, 2},
		{"0.2:0.4", times, false, 2},
		{":-1", times, false, 2},
		{"", times[:1], true, 1},
		{"", []foamio.Instant{}, false, 0},
		{"0.1", nil, false, 0},
	}

	for i := range tests {
		_, err := Select(tests[i].spec, tests[i].times, false, tests[i].noZero)
		noMatch := &g_error.NoMatchingTimes{}
		if !errors.As(err, &noMatch) {
			t.Errorf("%d) Expected NoMatchingTimes, got %v.", i, err)
		} else if noMatch.Available != tests[i].available {
			t.Errorf("%d) Expected %d available times, got %d.",
				i, tests[i].available, noMatch.Available)
		}
	}
}

func TestSelectInvalid(t *testing.T) {
	times := []foamio.Instant{{Name: "0", Value: 0}}
	tests := []string{"a", "0.1:0.2:0.3", "0.5:0.1", ":", "latest"}

	for i := range tests {
		_, err := Select(tests[i], times, false, false)
		noMatch := &g_error.NoMatchingTimes{}
		if err == nil {
			t.Errorf("%d) Expected an error for '%s'.", i, tests[i])
		} else if errors.As(err, &noMatch) {
			t.Errorf("%d) Expected '%s' to be reported as malformed, not as "+
				"NoMatchingTimes.", i, tests[i])
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		spec           string
		latest, noZero bool
		desc           string
	}{
		{"", false, false, "all"},
		{"", true, false, "-latestTime"},
		{" 0.1:0.2 ", false, true, "0.1:0.2 -noZero"},
		{"all", true, true, "all -latestTime -noZero"},
	}

	for i := range tests {
		desc := describe(tests[i].spec, tests[i].latest, tests[i].noZero)
		if desc != tests[i].desc {
			t.Errorf("%d) Expected '%s', got '%s'.", i, tests[i].desc, desc)
		}
	}
}

func TestCheckSelection(t *testing.T) {
	tests := []struct {
		spec  string
		valid bool
	}{
		{"", true},
		{"all", true},
		{"0.1, 0.2:0.5 1:", true},
		{"0.1,,b", false},
		{"0.5:0.1", false},
	}

	for i := range tests {
		err := CheckSelection(tests[i].spec)
		if tests[i].valid && err != nil {
			t.Errorf("%d) Expected '%s' to be valid, but got error '%s'.",
				i, tests[i].spec, err.Error())
		} else if !tests[i].valid && err == nil {
			t.Errorf("%d) Expected '%s' to be invalid, but got no error.",
				i, tests[i].spec)
		}
	}
}
