package harness

import "github.com/roach88/rxprops/props"

// Trace event causes.
const (
	CauseAttach   = "attach"
	CauseInput    = "input"
	CauseInvoke   = "invoke"
	CauseTeardown = "teardown"
)

// TraceEvent is one output snapshot applied to the binding.
type TraceEvent struct {
	// Seq is the binding clock value of the emission.
	Seq int64 `json:"seq"`

	// Cause is the step kind that was running when the snapshot arrived.
	Cause string `json:"cause"`

	// Action names the invoked action when Cause is CauseInvoke.
	Action string `json:"action,omitempty"`

	// Output is the emitted snapshot.
	Output props.Set `json:"output"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// BindingID is the ID of the binding the scenario ran against.
	BindingID string `json:"binding_id"`

	// Trace holds the output snapshots in emission order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation, assertion or step.
	Errors []string `json:"errors,omitempty"`

	// State is the binding state after the last step.
	State props.Set `json:"state"`

	// Err is the error that terminated the output, if any.
	Err string `json:"err,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  props.Set{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outputs returns the traced snapshots in order.
func (r *Result) Outputs() []props.Set {
	out := make([]props.Set, len(r.Trace))
	for i, e := range r.Trace {
		out[i] = e.Output
	}
	return out
}
