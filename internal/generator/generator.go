// Package generator runs the external documentation generator.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// DefaultCommand is the generator invoked when none is configured.
const DefaultCommand = "fern generate --docs"

// ExitError reports a generator that ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("generator %q exited with status %d", e.Command, e.Code)
}

// ParseCommand splits a shell-quoted command line into argv.
func ParseCommand(line string) ([]string, error) {
	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing generator command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("generator command is empty")
	}
	return argv, nil
}

// Runner executes a generator command in a directory.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) error
}

// ExecRunner runs the generator as a subprocess. Nil streams inherit the
// parent process's stdin, stdout and stderr.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts argv[0] with dir as its working directory and waits for it.
// A non-zero exit yields *ExitError; a failure to start is wrapped as-is.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("generator command is empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: strings.Join(argv, " "), Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("starting generator %q: %w", argv[0], err)
}

