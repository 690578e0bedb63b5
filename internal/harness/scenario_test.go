package harness

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidYAML(t *testing.T) {
	path := writeScenario(t, "s.yaml", `
name: test_scenario
description: "Test scenario"
binding_id: b-1
initial: { bar: 1 }
mapper:
  - { op: copy, key: baz, from: bar }
actions:
  inc: { op: accumulate, key: count, value: 10 }
steps:
  - input: { bar: 2 }
  - invoke: inc
    arg: 1
  - teardown: true
assertions:
  - { type: output_count, count: 3 }
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, "b-1", s.BindingID)
	assert.Equal(t, map[string]any{"bar": 1}, s.Initial)
	assert.Equal(t, []MapperOp{{Op: OpCopy, Key: "baz", From: "bar"}}, s.Mapper)
	assert.Equal(t, ActionOp{Op: OpAccumulate, Key: "count", Value: 10}, s.Actions["inc"])
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "inc", s.Steps[1].Invoke)
	assert.Equal(t, 1, s.Steps[1].Arg)
	assert.True(t, s.Steps[2].Teardown)
}

func TestLoadScenario_ValidCUE(t *testing.T) {
	path := writeScenario(t, "s.cue", `
name:        "cue_scenario"
description: "Loaded from CUE"
initial: {bar: 1, big: 3000000000}
actions: flip: {op: "toggle", key: "on", value: true}
steps: [
	{input: {bar: 2}},
	{invoke: "flip", arg: {n: 7}},
]
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "cue_scenario", s.Name)
	assert.Equal(t, map[string]any{"bar": 1, "big": 3000000000}, s.Initial)
	assert.Equal(t, ActionOp{Op: OpToggle, Key: "on", Value: true}, s.Actions["flip"])
	assert.Equal(t, map[string]any{"bar": 2}, s.Steps[0].Input)
	assert.Equal(t, map[string]any{"n": 7}, s.Steps[1].Arg)
}

func TestLoadScenario_Testdata(t *testing.T) {
	for _, name := range []string{"dedupe.yaml", "counter.yaml", "derived.yaml", "gated.yaml", "panel.cue"} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
			require.NoError(t, err)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeRead))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadScenario_UnsupportedExtension(t *testing.T) {
	path := writeScenario(t, "s.json", `{}`)
	_, err := LoadScenario(path)
	assert.True(t, IsLoadError(err, ErrCodeFormat))
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, "s.yaml", `
name: typo
description: "assertion instead of assertions"
steps:
  - input: {}
assertion:
  - { type: output_count, count: 1 }
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeParse))
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_CUESyntaxErrorHasPosition(t *testing.T) {
	path := writeScenario(t, "bad.cue", "name: \"x\"\nsteps: [\n")
	_, err := LoadScenario(path)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeParse, le.Code)
	assert.True(t, le.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.cue")
}

func TestLoadScenario_CUEConflictRejected(t *testing.T) {
	path := writeScenario(t, "conflict.cue", `
name: "a"
name: "b"
description: "conflicting names"
steps: [{teardown: true}]
`)
	_, err := LoadScenario(path)
	assert.True(t, IsLoadError(err, ErrCodeParse))
}

func TestValidateScenario(t *testing.T) {
	valid := func() *Scenario {
		return &Scenario{
			Name:        "v",
			Description: "d",
			Steps:       []Step{{Teardown: true}},
		}
	}

	tests := []struct {
		name   string
		mutate func(s *Scenario)
		errMsg string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps list is required"},
		{"empty step", func(s *Scenario) { s.Steps = []Step{{}} }, "steps[0]: exactly one of"},
		{"two kinds in a step", func(s *Scenario) {
			s.Steps = []Step{{Invoke: "a", Teardown: true}}
		}, "exactly one of"},
		{"arg without invoke", func(s *Scenario) {
			s.Steps = []Step{{Input: map[string]any{}, Arg: 1}}
		}, "arg is only valid with invoke"},
		{"unknown mapper op", func(s *Scenario) {
			s.Mapper = []MapperOp{{Op: "explode", Key: "k"}}
		}, `mapper[0]: unknown mapper op "explode"`},
		{"mapper op without op", func(s *Scenario) { s.Mapper = []MapperOp{{Key: "k"}} }, "op is required"},
		{"copy without from", func(s *Scenario) {
			s.Mapper = []MapperOp{{Op: OpCopy, Key: "k"}}
		}, "copy requires key and from"},
		{"sum without fields", func(s *Scenario) {
			s.Mapper = []MapperOp{{Op: OpSum, Key: "k"}}
		}, "sum requires key and fields"},
		{"drop_unless without from", func(s *Scenario) {
			s.Mapper = []MapperOp{{Op: OpDropUnless}}
		}, "drop_unless requires from"},
		{"unknown action op", func(s *Scenario) {
			s.Actions = map[string]ActionOp{"go": {Op: "fly"}}
		}, `actions.go: unknown action op "fly"`},
		{"patch without key", func(s *Scenario) {
			s.Actions = map[string]ActionOp{"p": {Op: OpPatch}}
		}, "patch requires key"},
		{"accumulate with string seed", func(s *Scenario) {
			s.Actions = map[string]ActionOp{"a": {Op: OpAccumulate, Key: "n", Value: "x"}}
		}, "accumulate seed must be a number"},
		{"toggle with int seed", func(s *Scenario) {
			s.Actions = map[string]ActionOp{"t": {Op: OpToggle, Key: "on", Value: 1}}
		}, "toggle seed must be a bool"},
		{"negative skip", func(s *Scenario) {
			s.Actions = map[string]ActionOp{"p": {Op: OpPatch, Key: "k", Skip: -1}}
		}, "skip and limit must be non-negative"},
		{"unknown assertion", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: "trace_contains"}}
		}, `unknown assertion type "trace_contains"`},
		{"assertion without type", func(s *Scenario) { s.Assertions = []Assertion{{}} }, "type is required"},
		{"negative count", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertOutputCount, Count: -1}}
		}, "count must be non-negative"},
		{"output_contains without output", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertOutputContains}}
		}, "output is required"},
		{"final_state without expect", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertFinalState}}
		}, "expect is required"},
	}

	require.NoError(t, validateScenario(valid()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := validateScenario(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseYAML_InvalidIsLoadError(t *testing.T) {
	_, err := ParseYAML([]byte("name: x\ndescription: y\nsteps: []\n"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeInvalid))
	assert.True(t, IsLoadError(err, ""))
	assert.False(t, IsLoadError(assert.AnError, ""))
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"i64": int64(3),
		"u":   uint(4),
		"f32": float32(0.5),
		"nested": map[string]any{
			"list": []any{int64(1), "x"},
		},
	}

	assert.Equal(t, map[string]any{
		"i64": 3,
		"u":   4,
		"f32": 0.5,
		"nested": map[string]any{
			"list": []any{1, "x"},
		},
	}, normalizeMap(in))
	assert.Nil(t, normalizeMap(nil))
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a.yaml"))
	assert.True(t, IsScenarioFile("a.YML"))
	assert.True(t, IsScenarioFile("dir/a.cue"))
	assert.False(t, IsScenarioFile("a.golden"))
	assert.False(t, IsScenarioFile("a"))
}
