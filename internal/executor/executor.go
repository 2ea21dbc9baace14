// Package executor runs external commands and captures their output,
// isolating os/exec behind an interface so pipeline stages stay
// testable without the real binaries installed.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is one process execution outcome.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor abstracts process execution for testability.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// execExecutor executes commands via os/exec.
type execExecutor struct{}

// New creates the production executor.
func New() Executor {
	return &execExecutor{}
}

// Run executes one command and captures stdout/stderr and exit code.
func (e *execExecutor) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}
