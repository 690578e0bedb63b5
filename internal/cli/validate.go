package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rxprops/internal/harness"
)

// ValidationError describes one scenario file that failed to load or build.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios int               `json:"scenarios"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir|scenario-file>",
		Short: "Validate scenario files without running them",
		Long: `Load every scenario file and build its composer without attaching it.

Catches syntax errors, unknown fields, unknown mapper and action ops and
malformed steps or assertions. Faster than test for editing feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("path not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "path not found", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = findScenarioFiles(path, "")
		if err != nil {
			_ = formatter.Error(ErrCodeScanError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to scan directory", err)
		}
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNoFiles, fmt.Sprintf("no scenario files found in %s", path), nil)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	result := ValidationResult{Valid: true, Scenarios: len(files)}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if verr := validateFile(file); verr != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *verr)
		}
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %d scenario(s) valid", result.Scenarios))
}

func validateFile(file string) *ValidationError {
	s, err := harness.LoadScenario(file)
	if err != nil {
		verr := &ValidationError{File: file, Code: loadErrorCode(err), Message: err.Error()}
		var le *harness.LoadError
		if errors.As(err, &le) && le.Pos.IsValid() {
			verr.Line = le.Pos.Line()
		}
		return verr
	}
	if _, err := harness.BuildComposer(s, nil); err != nil {
		return &ValidationError{File: file, Code: ErrCodeBuildFailed, Message: err.Error()}
	}
	return nil
}

func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("%d of %d scenario(s) invalid", len(result.Errors), result.Scenarios)
	if f.Format == "json" {
		if err := f.Failure(ErrCodeLoadFailed, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "✗ %s:%d [%s] %s\n", e.File, e.Line, e.Code, e.Message)
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s [%s] %s\n", e.File, e.Code, e.Message)
	}
	return NewExitError(ExitFailure, msg)
}
