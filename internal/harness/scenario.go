package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Scenario is a declarative run of one binding.
type Scenario struct {
	// Name uniquely identifies the scenario. It also names the golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description" json:"description"`

	// BindingID is the fixed binding ID. Empty means "test-binding-default".
	BindingID string `yaml:"binding_id,omitempty" json:"binding_id,omitempty"`

	// Initial seeds the raw input.
	Initial map[string]any `yaml:"initial,omitempty" json:"initial,omitempty"`

	// Mapper lists derivation ops. Empty means the identity mapper.
	Mapper []MapperOp `yaml:"mapper,omitempty" json:"mapper,omitempty"`

	// Actions maps action names to action ops.
	Actions map[string]ActionOp `yaml:"actions,omitempty" json:"actions,omitempty"`

	// Steps drive the binding after it is attached.
	Steps []Step `yaml:"steps" json:"steps"`

	// Expect lists every output snapshot, in order. Empty skips the check.
	Expect []map[string]any `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// MapperOp is one derivation op.
type MapperOp struct {
	Op     string   `yaml:"op" json:"op"`
	Key    string   `yaml:"key,omitempty" json:"key,omitempty"`
	From   string   `yaml:"from,omitempty" json:"from,omitempty"`
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Value  any      `yaml:"value,omitempty" json:"value,omitempty"`
	Sep    string   `yaml:"sep,omitempty" json:"sep,omitempty"`
}

// ActionOp describes what an action emits for each argument. Skip ignores
// the first arguments; a positive Limit ends the action after that many
// accepted arguments.
type ActionOp struct {
	Op    string `yaml:"op" json:"op"`
	Key   string `yaml:"key,omitempty" json:"key,omitempty"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`
	Skip  int    `yaml:"skip,omitempty" json:"skip,omitempty"`
	Limit int    `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Step is one host interaction. Exactly one of Input, Invoke or Teardown is
// set.
type Step struct {
	// Input is the next raw input snapshot.
	Input map[string]any `yaml:"input,omitempty" json:"input,omitempty"`

	// Invoke names the action to call with Arg.
	Invoke string `yaml:"invoke,omitempty" json:"invoke,omitempty"`
	Arg    any    `yaml:"arg,omitempty" json:"arg,omitempty"`

	// Teardown tears the binding down.
	Teardown bool `yaml:"teardown,omitempty" json:"teardown,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type" json:"type"`

	// Count is the expected number of snapshots (output_count).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Output is the expected subset of some snapshot (output_contains).
	Output map[string]any `yaml:"output,omitempty" json:"output,omitempty"`

	// Expect is the expected subset of the final state (final_state).
	Expect map[string]any `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputCount          = "output_count"
	AssertOutputContains       = "output_contains"
	AssertFinalState           = "final_state"
	AssertNoAdjacentDuplicates = "no_adjacent_duplicates"
)

// Mapper op constants.
const (
	OpCopy       = "copy"
	OpSet        = "set"
	OpSum        = "sum"
	OpConcat     = "concat"
	OpDropUnless = "drop_unless"
)

// Action op constants.
const (
	OpPatch      = "patch"
	OpAccumulate = "accumulate"
	OpMergeArg   = "merge_arg"
	OpToggle     = "toggle"
)

// Load error codes.
const (
	ErrCodeRead    = "E101" // scenario file unreadable
	ErrCodeFormat  = "E102" // unsupported file extension
	ErrCodeParse   = "E103" // YAML or CUE syntax or decode error
	ErrCodeInvalid = "E104" // scenario failed validation
)

// LoadError is returned by LoadScenario.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is a *LoadError with the given code.
// An empty code matches any LoadError.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	if !errors.As(err, &le) {
		return false
	}
	return code == "" || le.Code == code
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadScenario reads, parses and validates a scenario file. The format is
// chosen by extension: .yaml and .yml are YAML, .cue is CUE.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("failed to read scenario file: %v", err), Err: err}
	}

	var s *Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".cue":
		s, err = ParseCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported scenario format %q", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseYAML decodes and validates a YAML scenario. Unknown fields are
// rejected so typos like "assertion:" fail loudly.
func ParseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("failed to parse YAML: %v", err), Err: err}
	}
	return finish(&s)
}

// ParseCUE compiles and decodes a CUE scenario. filename is used for
// positions in error messages.
func ParseCUE(filename string, data []byte) (*Scenario, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueLoadError("failed to compile CUE", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError("scenario is not concrete", err)
	}

	var s Scenario
	if err := v.Decode(&s); err != nil {
		return nil, cueLoadError("failed to decode CUE", err)
	}
	return finish(&s)
}

func cueLoadError(msg string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

func finish(s *Scenario) (*Scenario, error) {
	normalizeScenario(s)
	if err := validateScenario(s); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("invalid scenario: %v", err), Err: err}
	}
	return s, nil
}

// normalizeScenario converts decoded numbers to int or float64 so values
// from YAML and CUE compare and render alike.
func normalizeScenario(s *Scenario) {
	s.Initial = normalizeMap(s.Initial)
	for i := range s.Mapper {
		s.Mapper[i].Value = normalize(s.Mapper[i].Value)
	}
	for name, op := range s.Actions {
		op.Value = normalize(op.Value)
		s.Actions[name] = op
	}
	for i := range s.Steps {
		s.Steps[i].Input = normalizeMap(s.Steps[i].Input)
		s.Steps[i].Arg = normalize(s.Steps[i].Arg)
	}
	for i := range s.Expect {
		s.Expect[i] = normalizeMap(s.Expect[i])
	}
	for i := range s.Assertions {
		s.Assertions[i].Output = normalizeMap(s.Assertions[i].Output)
		s.Assertions[i].Expect = normalizeMap(s.Assertions[i].Expect)
	}
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case int32:
		return int(val)
	case uint64:
		return int(val)
	case uint:
		return int(val)
	case float32:
		return float64(val)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

// validateScenario checks required fields and the op vocabulary.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, op := range s.Mapper {
		if err := validateMapperOp(op); err != nil {
			return fmt.Errorf("mapper[%d]: %w", i, err)
		}
	}
	for _, name := range sortedNames(s.Actions) {
		if err := validateActionOp(s.Actions[name]); err != nil {
			return fmt.Errorf("actions.%s: %w", name, err)
		}
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateMapperOp(op MapperOp) error {
	switch op.Op {
	case OpCopy:
		if op.Key == "" || op.From == "" {
			return fmt.Errorf("copy requires key and from")
		}
	case OpSet:
		if op.Key == "" {
			return fmt.Errorf("set requires key")
		}
	case OpSum, OpConcat:
		if op.Key == "" || len(op.Fields) == 0 {
			return fmt.Errorf("%s requires key and fields", op.Op)
		}
	case OpDropUnless:
		if op.From == "" {
			return fmt.Errorf("drop_unless requires from")
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown mapper op %q", op.Op)
	}
	return nil
}

func validateActionOp(op ActionOp) error {
	if op.Skip < 0 || op.Limit < 0 {
		return fmt.Errorf("skip and limit must be non-negative")
	}
	switch op.Op {
	case OpPatch:
		if op.Key == "" {
			return fmt.Errorf("patch requires key")
		}
	case OpAccumulate:
		if op.Key == "" {
			return fmt.Errorf("accumulate requires key")
		}
		if op.Value != nil && !isNumber(op.Value) {
			return fmt.Errorf("accumulate seed must be a number, got %T", op.Value)
		}
	case OpToggle:
		if op.Key == "" {
			return fmt.Errorf("toggle requires key")
		}
		if _, ok := op.Value.(bool); op.Value != nil && !ok {
			return fmt.Errorf("toggle seed must be a bool, got %T", op.Value)
		}
	case OpMergeArg:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown action op %q", op.Op)
	}
	return nil
}

func validateStep(step Step) error {
	set := 0
	if step.Input != nil {
		set++
	}
	if step.Invoke != "" {
		set++
	}
	if step.Teardown {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of input, invoke or teardown is required")
	}
	if step.Arg != nil && step.Invoke == "" {
		return fmt.Errorf("arg is only valid with invoke")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertOutputCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for output_count")
		}
	case AssertOutputContains:
		if len(a.Output) == 0 {
			return fmt.Errorf("output is required for output_contains")
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("expect is required for final_state")
		}
	case AssertNoAdjacentDuplicates:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
