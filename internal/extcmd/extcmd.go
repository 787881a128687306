// Package extcmd runs external collaborator processes (stem separator,
// generative model, filter-chain executor) and normalizes their failures.
// Stderr is captured and preserved verbatim so operators can debug the
// external tool directly.
package extcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ProcessError reports a collaborator process that exited non-zero or could
// not be started. Stderr holds the process's diagnostic output unmodified.
type ProcessError struct {
	Name   string // collaborator name, e.g. "demucs"
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v\n%s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// TimeoutError reports a collaborator call that exceeded its bounded wait.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Limit)
}

// Command describes one external invocation.
type Command struct {
	Name    string   // collaborator name used in errors
	Bin     string   // executable to run
	Args    []string
	Env     []string      // extra environment entries, appended to the parent's
	Dir     string        // working directory; empty means inherit
	Timeout time.Duration // bounded wait; 0 waits indefinitely
}

// Run executes the command, blocking until it exits, ctx is done, or the
// command's timeout elapses. A non-zero exit yields a ProcessError carrying
// stderr; an elapsed timeout yields a TimeoutError instead.
func Run(ctx context.Context, c Command) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Bin, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: c.Name, Limit: c.Timeout}
	}

	return &ProcessError{Name: c.Name, Stderr: stderr.String(), Err: err}
}
