package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/rxprops/internal/canonical"
	"github.com/roach88/rxprops/props"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // assertion type
	Expected string       // human-readable expected outcome
	Actual   string       // human-readable actual outcome
	Trace    []TraceEvent // full trace for context
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Cause, render(event.Output))
		}
	}
	return buf.String()
}

// EvaluateAssertions evaluates every assertion against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutputCount:
			err = assertOutputCount(result.Trace, a)
		case AssertOutputContains:
			err = assertOutputContains(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		case AssertNoAdjacentDuplicates:
			err = assertNoAdjacentDuplicates(result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertOutputCount(trace []TraceEvent, a Assertion) error {
	if len(trace) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputCount,
		Expected: fmt.Sprintf("%d outputs", a.Count),
		Actual:   fmt.Sprintf("%d outputs", len(trace)),
		Trace:    trace,
	}
}

func assertOutputContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if containsAll(event.Output, a.Output) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: fmt.Sprintf("an output containing %s", render(a.Output)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func assertFinalState(state props.Set, a Assertion) error {
	for _, key := range sortedNames(a.Expect) {
		actual, ok := state[key]
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("key %q to exist", key),
				Actual:   fmt.Sprintf("keys present: %v", state.Keys()),
			}
		}
		if !sameValue(a.Expect[key], actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%q = %s", key, render(a.Expect[key])),
				Actual:   fmt.Sprintf("%q = %s", key, render(actual)),
			}
		}
	}
	return nil
}

func assertNoAdjacentDuplicates(trace []TraceEvent) error {
	for i := 1; i < len(trace); i++ {
		if props.IsSame(trace[i-1].Output, trace[i].Output) {
			return &AssertionError{
				Type:     AssertNoAdjacentDuplicates,
				Expected: "no two consecutive outputs shallowly equal",
				Actual:   fmt.Sprintf("outputs %d and %d are equal", trace[i-1].Seq, trace[i].Seq),
				Trace:    trace,
			}
		}
	}
	return nil
}

// checkExpect compares the trace against the expected snapshots, in order.
func checkExpect(result *Result, expect []map[string]any) []string {
	if len(expect) == 0 {
		return nil
	}

	var errs []string
	if len(expect) != len(result.Trace) {
		errs = append(errs, fmt.Sprintf("expect: %d outputs, got %d", len(expect), len(result.Trace)))
	}
	for i := range min(len(expect), len(result.Trace)) {
		want, got := render(expect[i]), render(result.Trace[i].Output)
		if want != got {
			errs = append(errs, fmt.Sprintf("expect[%d]: want %s, got %s", i, want, got))
		}
	}
	return errs
}

// containsAll reports whether every key of want is in got with the same
// canonical rendering.
func containsAll(got props.Set, want map[string]any) bool {
	for k, v := range want {
		actual, ok := got[k]
		if !ok || !sameValue(v, actual) {
			return false
		}
	}
	return true
}

// sameValue compares by canonical rendering, so an action in state matches
// the "<action>" marker in a scenario file.
func sameValue(want, got any) bool {
	w, err := canonical.Marshal(want)
	if err != nil {
		return false
	}
	g, err := canonical.Marshal(got)
	if err != nil {
		return false
	}
	return bytes.Equal(w, g)
}

func render(v any) string {
	b, err := canonical.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
