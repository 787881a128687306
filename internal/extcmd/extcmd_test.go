package extcmd

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to /bin/sh")
	}
}

func TestRunSuccess(t *testing.T) {
	requireShell(t)

	err := Run(context.Background(), Command{
		Name: "true",
		Bin:  "/bin/sh",
		Args: []string{"-c", "exit 0"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRunPreservesStderr(t *testing.T) {
	requireShell(t)

	err := Run(context.Background(), Command{
		Name: "broken-tool",
		Bin:  "/bin/sh",
		Args: []string{"-c", "echo 'diagnostic line one' >&2; echo 'line two' >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("expected error from non-zero exit")
	}

	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessError, got %T: %v", err, err)
	}
	if pe.Name != "broken-tool" {
		t.Errorf("Name = %q", pe.Name)
	}
	// Diagnostic text must survive verbatim, not summarized.
	if !strings.Contains(pe.Stderr, "diagnostic line one\n") || !strings.Contains(pe.Stderr, "line two\n") {
		t.Errorf("stderr not preserved verbatim: %q", pe.Stderr)
	}
}

func TestRunTimeout(t *testing.T) {
	requireShell(t)

	err := Run(context.Background(), Command{
		Name:    "sleeper",
		Bin:     "/bin/sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if te.Op != "sleeper" {
		t.Errorf("Op = %q", te.Op)
	}
}

func TestRunMissingBinary(t *testing.T) {
	err := Run(context.Background(), Command{
		Name: "ghost",
		Bin:  "/nonexistent/definitely-not-here",
	})

	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProcessError for unavailable binary, got %T: %v", err, err)
	}
}
