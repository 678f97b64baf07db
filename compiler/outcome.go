package compiler

import (
	"fmt"
	"unicode/utf8"
)

// InvalidText replaces compiler output that is not valid UTF-8 when displayed
const InvalidText = "<invalid UTF-8 output>"

// Outcome is the result of a single compilation. It is exactly one of
// *Success, *CompileError or *LaunchFailure.
//
//	switch o := outcome.(type) {
//	case *compiler.Success:
//	case *compiler.CompileError:
//	case *compiler.LaunchFailure:
//	}
type Outcome interface {
	outcome()
}

// Success means the build tool exited normally and produced Artifact
type Success struct {
	Artifact string
}

// CompileError means the build tool ran and rejected the source file.
// Stdout and Stderr are kept verbatim.
type CompileError struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// LaunchFailure means the build tool could not be started
type LaunchFailure struct {
	Cause error
}

func (*Success) outcome()       {}
func (*CompileError) outcome()  {}
func (*LaunchFailure) outcome() {}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compilation failed with exit status %d", e.ExitStatus)
}

// StdoutText returns the captured stdout for display
func (e *CompileError) StdoutText() string {
	return Text(e.Stdout)
}

// StderrText returns the captured stderr for display
func (e *CompileError) StderrText() string {
	return Text(e.Stderr)
}

func (e *LaunchFailure) Error() string {
	return e.Cause.Error()
}

func (e *LaunchFailure) Unwrap() error {
	return e.Cause
}

// Text converts raw process output to string, substituting InvalidText when
// the bytes are not valid UTF-8
func Text(b []byte) string {
	if !utf8.Valid(b) {
		return InvalidText
	}
	return string(b)
}
