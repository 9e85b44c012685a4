package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It is re-executed by helperArgv to
// stand in for the external generator.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("DOCVARS_HELPER_PROCESS") != "1" {
		return
	}
	wd, _ := os.Getwd()
	fmt.Fprintf(os.Stdout, "cwd=%s\n", wd)
	fmt.Fprintln(os.Stderr, "generating")
	code, _ := strconv.Atoi(os.Getenv("DOCVARS_HELPER_EXIT"))
	os.Exit(code)
}

func helperArgv(t *testing.T, exitCode int) []string {
	t.Helper()
	t.Setenv("DOCVARS_HELPER_PROCESS", "1")
	t.Setenv("DOCVARS_HELPER_EXIT", strconv.Itoa(exitCode))
	return []string{os.Args[0], "-test.run=^TestHelperProcess$"}
}

func TestExecRunner_Success(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), dir, helperArgv(t, 0))
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "cwd="+resolved)
	assert.Contains(t, stderr.String(), "generating")
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	err := r.Run(context.Background(), t.TempDir(), helperArgv(t, 1))
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "exited with status 1")
}

func TestExecRunner_SpawnFailure(t *testing.T) {
	r := &ExecRunner{}
	err := r.Run(context.Background(), t.TempDir(), []string{"docvars-no-such-generator-binary"})
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
	assert.Contains(t, err.Error(), "starting generator")
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	r := &ExecRunner{}
	assert.Error(t, r.Run(context.Background(), t.TempDir(), nil))
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: DefaultCommand, want: []string{"fern", "generate", "--docs"}},
		{line: `fern generate --docs --instance "docs.example.com"`, want: []string{"fern", "generate", "--docs", "--instance", "docs.example.com"}},
		{line: `npx 'fern-api' generate`, want: []string{"npx", "fern-api", "generate"}},
		{line: "", wantErr: true},
		{line: "   ", wantErr: true},
		{line: `fern "unterminated`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
