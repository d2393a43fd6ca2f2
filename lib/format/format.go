/*package format handles foamtonumpy's miniature time selection language, which
is the same one OpenFOAM utilities accept through their -time option, e.g:

   all
   0.1
   0.1:0.5
   :0.5
   0.5:
   0, 0.1:0.5 2

The exact rules are as follows:
A selection is a series of tokens separated by commas and/or whitespace. Each
token can be the word "all", a single time value, or a range of times written
as two values separated by a ":". Ranges are inclusive, and either of their
bounds can be dropped to make them open-ended. A time directory is selected if
it matches any of the tokens. Values are matched to time directories up to a
relative tolerance of RelTol (or an absolute tolerance of AbsTol near zero),
so "0.1" matches a directory called "0.10000000001".

This is where foamtonumpy differs from OpenFOAM. OpenFOAM snaps a single value
to the closest time directory, so "-time 0.12" would convert 0.1. Here a value
only selects a directory that it matches, and a selection that matches nothing
is an error.

Two flags modify the selection afterwards:

  latest - The last time directory is added to the selection. If the
           selection string is empty, only the last time directory is used.
  noZero - Time 0 is removed unless it was asked for by value.

An empty selection string selects every time directory.
*/
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"

	g_error "github.com/phil-mansfield/foamtonumpy/lib/error"
	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
)

const (
	// RelTol and AbsTol are the tolerances used when comparing selection
	// values against time directory values.
	RelTol = 1e-9
	AbsTol = 1e-12
)

// Selection is an ordered sequence of time directories. It can be iterated
// over as many times as needed.
type Selection []foamio.Instant

// Names returns the directory names of every time in the selection.
func (sel Selection) Names() []string {
	out := make([]string, len(sel))
	for i := range sel {
		out[i] = sel[i].Name
	}
	return out
}

// timeRange is a single parsed selection token.
type timeRange struct {
	lo, hi float64
	// exact is true for tokens which name a single value.
	exact bool
}

func timesEqual(x, y float64) bool {
	return scalar.EqualWithinAbsOrRel(x, y, AbsTol, RelTol)
}

// contains returns true if the time x is inside r.
func (r timeRange) contains(x float64) bool {
	return (x >= r.lo || timesEqual(x, r.lo)) &&
		(x <= r.hi || timesEqual(x, r.hi))
}

// Select returns the times in the sorted list times that are matched by the
// selection string spec and the latest and noZero flags. The returned
// Selection is in the same order as times and contains no duplicates. If no
// times are matched, a *g_error.NoMatchingTimes is returned. A malformed spec
// results in an ordinary error.
func Select(
	spec string, times []foamio.Instant, latest, noZero bool,
) (Selection, error) {
	if err := CheckSelection(spec); err != nil {
		return nil, err
	}
	tok := tokeniseTimeSpec(spec)
	all, ranges, _ := parseTimeSpec(tok)

	if len(times) == 0 {
		return nil, &g_error.NoMatchingTimes{Spec: describe(spec, latest, noZero)}
	}

	// With no selection string, -latestTime replaces the default of "all".
	if len(tok) == 0 && !latest {
		all = true
	}

	selected := make([]bool, len(times))
	named := make([]bool, len(times))
	for i := range times {
		if all {
			selected[i] = true
		}
		for _, r := range ranges {
			if r.contains(times[i].Value) {
				selected[i] = true
				if r.exact {
					named[i] = true
				}
			}
		}
	}

	if latest {
		selected[len(times)-1] = true
	}

	if noZero {
		for i := range times {
			if times[i].Value == 0 && !named[i] {
				selected[i] = false
			}
		}
	}

	sel := Selection{}
	for i := range times {
		if selected[i] {
			sel = append(sel, times[i])
		}
	}

	if len(sel) == 0 {
		return nil, &g_error.NoMatchingTimes{
			Spec: describe(spec, latest, noZero), Available: len(times),
		}
	}

	return sel, nil
}

// CheckSelection returns an error if spec isn't a valid selection string.
func CheckSelection(spec string) error {
	if _, _, err := parseTimeSpec(tokeniseTimeSpec(spec)); err != nil {
		return fmt.Errorf("The time selection '%s' is not valid. %s",
			spec, err.Error())
	}
	return nil
}

// describe returns a description of the full selection for error messages.
func describe(spec string, latest, noZero bool) string {
	desc := strings.TrimSpace(spec)
	if desc == "" && !latest {
		desc = "all"
	}
	flags := []string{}
	if desc != "" {
		flags = append(flags, desc)
	}
	if latest {
		flags = append(flags, "-latestTime")
	}
	if noZero {
		flags = append(flags, "-noZero")
	}
	return strings.Join(flags, " ")
}

// tokeniseTimeSpec splits a selection string into its tokens. Empty tokens
// are removed.
func tokeniseTimeSpec(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// parseTimeSpec checks and parses every token in a tokenised selection
// string. all is true if any of the tokens was "all".
func parseTimeSpec(tok []string) (all bool, ranges []timeRange, err error) {
	ranges = []timeRange{}
	for i := range tok {
		if tok[i] == "all" {
			all = true
			continue
		}

		if err := isTimeSpecToken(tok[i]); err != nil {
			return false, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+1, tok[i], err.Error(),
			)
		}
		ranges = append(ranges, parseTimeSpecToken(tok[i]))
	}
	return all, ranges, nil
}

// isTimeSpecToken returns a nil error if tok is a valid value or range token
// and an error describing the problem otherwise. The error message assumes it
// is printed after a trailing "because".
func isTimeSpecToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("it is empty.")
	}

	bounds := strings.Split(tok, ":")

	switch len(bounds) {
	case 1:
		if _, err := parseTime(bounds[0]); err != nil {
			return err
		}
		return nil
	case 2:
		if bounds[0] == "" && bounds[1] == "" {
			return fmt.Errorf("a range needs at least one bound.")
		}
		lo, hi := math.Inf(-1), math.Inf(+1)
		var err error
		if bounds[0] != "" {
			if lo, err = parseTime(bounds[0]); err != nil {
				return err
			}
		}
		if bounds[1] != "" {
			if hi, err = parseTime(bounds[1]); err != nil {
				return err
			}
		}
		if hi < lo {
			return fmt.Errorf("lower bound %g is larger than upper bound %g.",
				lo, hi)
		}
		return nil
	}
	return fmt.Errorf("it has more than one ':'.")
}

func parseTime(s string) (float64, error) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("'%s' is not a time value.", s)
	}
	return x, nil
}

// parseTimeSpecToken parses a single token in a selection string. This
// function assumes that the tests in isTimeSpecToken have already been run
// and thus does no error checking.
func parseTimeSpecToken(tok string) timeRange {
	bounds := strings.Split(tok, ":")

	switch len(bounds) {
	case 1:
		x, _ := strconv.ParseFloat(tok, 64)
		return timeRange{lo: x, hi: x, exact: true}
	case 2:
		r := timeRange{lo: math.Inf(-1), hi: math.Inf(+1)}
		if bounds[0] != "" {
			r.lo, _ = strconv.ParseFloat(bounds[0], 64)
		}
		if bounds[1] != "" {
			r.hi, _ = strconv.ParseFloat(bounds[1], 64)
		}
		return r
	}

	g_error.Internal(
		"Invalid time selection token, '%s', passed isTimeSpecToken()", tok,
	)
	return timeRange{}
}
