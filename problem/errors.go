package problem

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDir is returned when the test directory is not a directory
var ErrNotDir = errors.New("not a directory")

// ErrorKind classifies a problem with a single test case
type ErrorKind int

// Test case problems
const (
	MissingAnswer ErrorKind = iota + 1 // no answer file for an input
	Ambiguous                          // several files claim the same identifier
)

func (k ErrorKind) String() string {
	switch k {
	case MissingAnswer:
		return "missing answer"
	case Ambiguous:
		return "ambiguous test case"
	default:
		return "unknown"
	}
}

// CaseError reports a test case that could not be paired. Paths lists the
// missing answer file or the conflicting files.
type CaseError struct {
	ID    string
	Kind  ErrorKind
	Paths []string
}

func (e *CaseError) Error() string {
	switch e.Kind {
	case MissingAnswer:
		return fmt.Sprintf("test %s: answer file %s not found", e.ID, strings.Join(e.Paths, ", "))
	case Ambiguous:
		return fmt.Sprintf("test %s: ambiguous test case: %s", e.ID, strings.Join(e.Paths, ", "))
	default:
		return fmt.Sprintf("test %s: %v", e.ID, e.Kind)
	}
}
