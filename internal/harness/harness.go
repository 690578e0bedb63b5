package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/rxprops/host"
	"github.com/roach88/rxprops/internal/testutil"
	"github.com/roach88/rxprops/props"
)

// Option configures a run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger handed to the composer and the binding.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario against a fresh binding and returns the result.
//
// Execution flow:
//  1. Build the composer from the scenario's ops
//  2. Attach it with a fixed binding ID and a fresh logical clock
//  3. Run the steps, recording every applied snapshot
//  4. Tear the binding down if no step did
//  5. Check expect and evaluate assertions
//
// The returned error covers failures to build the composer. Failed
// expectations, assertions and steps are reported in Result.Errors.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With("scenario", s.Name)

	c, err := BuildComposer(s, logger)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	clock := testutil.NewSeqClock()
	cause, action := CauseAttach, ""
	b := host.Attach(c, props.Set(s.Initial),
		host.WithLogger(logger),
		host.WithTokenGenerator(testutil.NewFixedTokenGenerator(s.BindingID)),
		host.WithClock(clock),
		host.OnEmit(func(e host.Emission) {
			result.Trace = append(result.Trace, TraceEvent{
				Seq:    e.Seq,
				Cause:  cause,
				Action: action,
				Output: e.Snapshot,
			})
		}),
	)
	result.BindingID = b.ID()

	for i, step := range s.Steps {
		action = ""
		switch {
		case step.Input != nil:
			cause = CauseInput
			b.Update(props.Set(step.Input))
		case step.Invoke != "":
			cause, action = CauseInvoke, step.Invoke
			if _, err := b.Invoke(step.Invoke, step.Arg); err != nil {
				result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			}
		case step.Teardown:
			cause = CauseTeardown
			b.Teardown()
		}
		logger.Debug("step done", "step", i, "cause", cause, "outputs", len(result.Trace))
	}
	cause, action = CauseTeardown, ""
	b.Teardown()

	result.State = b.State()
	if err := b.Err(); err != nil {
		result.Err = err.Error()
		result.AddError(fmt.Sprintf("output failed: %v", err))
	}

	for _, msg := range checkExpect(result, s.Expect) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario finished", "pass", result.Pass, "outputs", len(result.Trace), "seq", clock.Current())
	return result, nil
}

// RunFile loads and runs the scenario at path.
func RunFile(path string, opts ...Option) (*Scenario, *Result, error) {
	s, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := Run(s, opts...)
	if err != nil {
		return s, nil, err
	}
	return s, r, nil
}
