package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benefits-incoming/internal/logging"
	"github.com/benefits-incoming/internal/parser"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	saved := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(saved) })

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benefits.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const exampleInput = "U1,Jane,Doe,1,Acme\nU1,Jane,Doe,2,Acme\nU2,Bob,Lee,5,Acme\nU3,Amy,Roe,1,Globex\nU4,NoVersion,Acme\n"

func TestRoot_ReconcilesPositionalInput(t *testing.T) {
	input := writeInput(t, exampleInput)
	outDir := t.TempDir()

	stdout, stderr, err := execute(t, input, "--out-dir", outDir, "--log-format", "json")
	require.NoError(t, err)

	acme, err := os.ReadFile(filepath.Join(outDir, "Acme.out"))
	require.NoError(t, err)
	assert.Equal(t, "U1,Jane,Doe,2,Acme\nU2,Bob,Lee,5,Acme\n", string(acme))

	globex, err := os.ReadFile(filepath.Join(outDir, "Globex.out"))
	require.NoError(t, err)
	assert.Equal(t, "U3,Amy,Roe,1,Globex\n", string(globex))

	assert.Contains(t, stdout, "5 lines, 1 rejected, 3 survivors across 2 carriers")
	assert.Contains(t, stderr, `"row":"U4,NoVersion,Acme"`)
}

func TestReconcile_JSONSummary(t *testing.T) {
	input := writeInput(t, exampleInput)

	stdout, _, err := execute(t, "reconcile", input, "-o", t.TempDir(), "--format", "json", "--log-level", "error")
	require.NoError(t, err)

	var resp struct {
		Status string  `json:"status"`
		Data   Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"Acme", "Globex"}, resp.Data.Carriers)
	assert.Equal(t, 1, resp.Data.Rejected)
	assert.Equal(t, 3, resp.Data.Survivors)
	assert.Empty(t, resp.Data.Failures)
}

func TestReconcile_MissingInputCompletes(t *testing.T) {
	outDir := t.TempDir()
	stdout, _, err := execute(t, "reconcile", filepath.Join(outDir, "missing.txt"), "-o", outDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Input error:")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReconcile_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"too many args", []string{"a", "b"}},
		{"reconcile without input", []string{"reconcile"}},
		{"bad format", []string{"x", "--format", "xml"}},
		{"bad log level", []string{"x", "--log-level", "loud"}},
		{"bad sink", []string{writeInput(t, exampleInput), "--sink", "s3", "--log-level", "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.name != "too many args" && tt.name != "reconcile without input" {
				assert.Equal(t, ExitCommandError, GetExitCode(err))
			}
		})
	}
}

func TestRoot_NoArgsShowsHelp(t *testing.T) {
	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
}

func TestGenerate_ToFileThenReconcile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "generated.txt")

	stdout, _, err := execute(t, "generate", "--users", "50", "--carriers", "Acme,Globex",
		"--malformed-ratio", "0.1", "--seed", "3", "--output", input, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 68 rows to "+input)

	data, err := os.ReadFile(input)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	var asStrings []string
	for _, l := range lines {
		asStrings = append(asStrings, string(l))
	}
	records, rejections := parser.ParseLines(asStrings)
	assert.NotEmpty(t, rejections)
	assert.Len(t, records, 62)

	outDir := filepath.Join(dir, "out")
	_, _, err = execute(t, input, "-o", outDir, "--log-level", "error")
	require.NoError(t, err)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Acme.out", entries[0].Name())
	assert.Equal(t, "Globex.out", entries[1].Name())
}

func TestGenerate_Stdout(t *testing.T) {
	stdout, _, err := execute(t, "generate", "--users", "4", "--duplicate-ratio", "0", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, 4, bytes.Count([]byte(stdout), []byte("\n")))
}

func TestGenerate_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"generate", "--users", "0"},
		{"generate", "--duplicate-ratio", "-1"},
		{"generate", "--malformed-ratio", "1"},
	} {
		_, _, err := execute(t, append(args, "--log-level", "error")...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
	wrapped := fmt.Errorf("running: %w", WrapExitError(ExitCommandError, "x", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
