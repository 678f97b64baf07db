package compiler

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Process is the observed result of a program that was started and ran
// to completion
type Process struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// Launcher starts an external program with ordered arguments and waits for it.
// An empty dir runs the program in the current directory.
//
// A non-nil error means the program could not be started at all (missing
// binary, permission denied, ...). A program that starts and exits with a
// non-zero status is reported through Process.ExitStatus with a nil error.
type Launcher interface {
	Launch(ctx context.Context, name string, args []string, dir string) (Process, error)
}

var _ Launcher = ExecLauncher{}

// ExecLauncher launches programs on the host through os/exec
type ExecLauncher struct {
	// Env overrides the environment of the child process if not nil
	Env []string
}

// Launch implements Launcher
func (l ExecLauncher) Launch(ctx context.Context, name string, args []string, dir string) (Process, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = l.Env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Process{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// killed by signal (including context deadline) reports -1
		return Process{
			ExitStatus: exitErr.ExitCode(),
			Stdout:     stdout.Bytes(),
			Stderr:     stderr.Bytes(),
		}, nil
	}
	return Process{}, err
}
