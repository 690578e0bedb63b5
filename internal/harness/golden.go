package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rxprops/internal/canonical"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string
	BindingID    string
	Trace        []TraceEvent
	FinalState   map[string]any
	Err          string
}

// Snapshot captures the golden form of r.
func Snapshot(name string, r *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		BindingID:    r.BindingID,
		Trace:        r.Trace,
		FinalState:   r.State,
		Err:          r.Err,
	}
}

// toCanonicalMap converts the snapshot to plain maps for canonical.Marshal.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		m := map[string]any{
			"seq":    event.Seq,
			"cause":  event.Cause,
			"output": map[string]any(event.Output),
		}
		if event.Action != "" {
			m["action"] = event.Action
		}
		trace[i] = m
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"binding_id":    s.BindingID,
		"trace":         trace,
		"final_state":   s.FinalState,
	}
	if s.Err != "" {
		out["error"] = s.Err
	}
	return out
}

// Render returns the canonical JSON of the snapshot followed by a newline.
func (s *TraceSnapshot) Render() ([]byte, error) {
	b, err := canonical.Marshal(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// RenderTrace renders the golden form of r.
func RenderTrace(name string, r *Result) ([]byte, error) {
	snap := Snapshot(name, r)
	return snap.Render()
}

// RunWithGolden runs the scenario and compares its rendered trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	rendered, err := RenderTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, rendered)
	return nil
}
