package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rxprops/internal/canonical"
	"github.com/roach88/rxprops/internal/harness"
)

// RunOutput is the printable result of one scenario run. Snapshots are
// canonical JSON, so actions appear as "<action>".
type RunOutput struct {
	Scenario  string          `json:"scenario"`
	BindingID string          `json:"binding_id"`
	Pass      bool            `json:"pass"`
	Trace     []TraceLine     `json:"trace"`
	State     json.RawMessage `json:"state"`
	Errors    []string        `json:"errors,omitempty"`
}

// TraceLine is one traced output snapshot.
type TraceLine struct {
	Seq    int64           `json:"seq"`
	Cause  string          `json:"cause"`
	Action string          `json:"action,omitempty"`
	Output json.RawMessage `json:"output"`
}

func (o RunOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s (binding %s)\n", o.Scenario, o.BindingID)
	for _, l := range o.Trace {
		cause := l.Cause
		if l.Action != "" {
			cause += " " + l.Action
		}
		fmt.Fprintf(&b, "  [%d] %s %s\n", l.Seq, cause, l.Output)
	}
	fmt.Fprintf(&b, "state %s\n", o.State)
	if o.Pass {
		b.WriteString("✓ pass")
		return b.String()
	}
	b.WriteString("✗ fail")
	for _, e := range o.Errors {
		fmt.Fprintf(&b, "\n  %s", e)
	}
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run one scenario and print its trace",
		Long: `Run one scenario file (YAML or CUE) against a fresh binding and print
every output snapshot in emission order, followed by the final state.

Exit codes:
  0 - Scenario passed
  1 - An expectation or assertion failed
  2 - Command error (missing file, invalid scenario, etc.)

Examples:
  rxprops run ./scenarios/counter.yaml
  rxprops run ./scenarios/panel.cue --format json
  rxprops run ./scenarios/counter.yaml -v`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runScenarioFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts, cmd.ErrOrStderr())

	formatter.VerboseLog("Loading scenario %s", path)
	s, err := harness.LoadScenario(path)
	if err != nil {
		code := loadErrorCode(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	r, err := harness.Run(s, harness.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	out, err := toRunOutput(s, r)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to render trace", err)
	}

	if !r.Pass {
		msg := fmt.Sprintf("scenario %s failed", s.Name)
		if err := formatter.Failure(ErrCodeTestFailed, msg, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(out)
}

func toRunOutput(s *harness.Scenario, r *harness.Result) (RunOutput, error) {
	out := RunOutput{
		Scenario:  s.Name,
		BindingID: r.BindingID,
		Pass:      r.Pass,
		Trace:     make([]TraceLine, 0, len(r.Trace)),
		Errors:    r.Errors,
	}
	for _, e := range r.Trace {
		b, err := canonical.Marshal(e.Output)
		if err != nil {
			return RunOutput{}, fmt.Errorf("output %d: %w", e.Seq, err)
		}
		out.Trace = append(out.Trace, TraceLine{Seq: e.Seq, Cause: e.Cause, Action: e.Action, Output: b})
	}
	state, err := canonical.Marshal(r.State)
	if err != nil {
		return RunOutput{}, fmt.Errorf("state: %w", err)
	}
	out.State = state
	return out, nil
}

// loadErrorCode maps a scenario load error to a CLI error code.
func loadErrorCode(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	var le *harness.LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeLoadFailed
}
