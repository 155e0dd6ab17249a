// Package runner invokes external tools as subprocesses.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands. Implementations must be safe to call
// sequentially from a single goroutine; no concurrency is assumed.
type Runner interface {
	// Run executes name with args in dir and returns trimmed stdout.
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
	// LookPath reports the resolved path of name, or an error if absent.
	LookPath(name string) (string, error)
}

// Exec is a Runner backed by os/exec.
type Exec struct {
	// Env is appended to the parent environment for every command.
	Env []string
}

// Run executes the command. Stderr is captured and included in the error on failure.
func (e *Exec) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = dir
	command.Stdout = &stdout
	command.Stderr = &stderr
	if len(e.Env) > 0 {
		command.Env = append(command.Environ(), e.Env...)
	}

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath wraps exec.LookPath.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
