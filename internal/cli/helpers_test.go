package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const harnessTestdata = "../harness/testdata"

// stageScenarios copies the harness scenarios and their golden traces into
// root/scenarios and root/golden and returns both directories.
func stageScenarios(t *testing.T) (scenarios, golden string) {
	t.Helper()
	root := t.TempDir()
	scenarios = filepath.Join(root, "scenarios")
	golden = filepath.Join(root, "golden")
	copyDir(t, filepath.Join(harnessTestdata, "scenarios"), scenarios)
	copyDir(t, filepath.Join(harnessTestdata, "golden"), golden)
	return scenarios, golden
}

func copyDir(t *testing.T, from, to string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(to, 0755))
	entries, err := os.ReadDir(from)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(from, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(to, e.Name()), data, 0644))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeCommand(NewRootCommand(), args...)
}

func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const failingScenario = `
name: failing
description: "Expects a count that never arrives"
initial: { n: 1 }
steps:
  - input: { n: 2 }
assertions:
  - { type: output_count, count: 7 }
`
