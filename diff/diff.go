// Package diff compares program output with the expected answer.
//
// Two policies are supported. Exact requires byte-for-byte equality.
// IgnoreTrailingSpace ignores white spaces at the end of each line and empty
// lines at the end of the file.
package diff

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
)

// Mode selects the comparison policy
type Mode int

// Comparison policies
const (
	IgnoreTrailingSpace Mode = iota
	Exact
)

func (m Mode) String() string {
	switch m {
	case IgnoreTrailingSpace:
		return "trailing-space"
	case Exact:
		return "exact"
	default:
		return "invalid"
	}
}

// ParseMode converts the String form back to Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "trailing-space", "":
		return IgnoreTrailingSpace, nil
	case "exact":
		return Exact, nil
	default:
		return 0, fmt.Errorf("invalid compare mode: %q", s)
	}
}

// Mismatch describes the first difference found. Line is 0 for Exact mode.
type Mismatch struct {
	Line     int
	Offset   int64
	Expected string
	Actual   string
}

func (e *Mismatch) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("at byte %d,\nexpected: %q\nactual: %q", e.Offset, e.Expected, e.Actual)
	}
	return fmt.Sprintf("at line %d,\nexpected: %v\nactual: %v", e.Line, e.Expected, e.Actual)
}

// Compare compares actual with expected under mode.
// It returns nil if they are the same, *Mismatch if they differ and any
// read error otherwise.
func Compare(mode Mode, expected, actual io.Reader) error {
	switch mode {
	case Exact:
		return compareExact(expected, actual)
	case IgnoreTrailingSpace:
		return compareTrimmed(expected, actual)
	default:
		return fmt.Errorf("invalid compare mode: %d", mode)
	}
}

const chunkSize = 32 << 10

func compareExact(expected, actual io.Reader) error {
	expBuf := make([]byte, chunkSize)
	actBuf := make([]byte, chunkSize)
	var offset int64
	for {
		ne, errE := io.ReadFull(expected, expBuf)
		na, errA := io.ReadFull(actual, actBuf)
		if err := readErr(errE); err != nil {
			return err
		}
		if err := readErr(errA); err != nil {
			return err
		}
		n := min(ne, na)
		if i := firstDiff(expBuf[:n], actBuf[:n]); i >= 0 {
			return mismatchAt(offset+int64(i), expBuf[i:ne], actBuf[i:na])
		}
		if ne != na {
			return mismatchAt(offset+int64(n), expBuf[n:ne], actBuf[n:na])
		}
		if ne < chunkSize {
			return nil
		}
		offset += int64(n)
	}
}

func readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil
	}
	return err
}

func firstDiff(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

func mismatchAt(offset int64, exp, act []byte) error {
	const context = 16
	return &Mismatch{
		Offset:   offset,
		Expected: string(exp[:min(len(exp), context)]),
		Actual:   string(act[:min(len(act), context)]),
	}
}

// maxLineSize bounds a single line in IgnoreTrailingSpace mode
const maxLineSize = 256 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return sc
}

func compareTrimmed(expected, actual io.Reader) error {
	expScan := newScanner(expected)
	actScan := newScanner(actual)

	for line := 1; ; line++ {
		exp, hasExp := scanTrimRight(expScan)
		act, hasAct := scanTrimRight(actScan)

		// EOF at the same time
		if !hasExp && !hasAct {
			return scanErr(expScan, actScan)
		}
		// they are not equal
		if exp != act {
			if err := scanErr(expScan, actScan); err != nil {
				return err
			}
			return &Mismatch{Line: line, Expected: exp, Actual: act}
		}
		// they are all exists and equal
		if hasExp && hasAct {
			continue
		}
		// verify all empty line lefts
		if err := verifyEOFSpace(line+1, false, actScan); err != nil {
			return err
		}
		if err := verifyEOFSpace(line+1, true, expScan); err != nil {
			return err
		}
		// at this point, they should all be same
		return scanErr(expScan, actScan)
	}
}

func scanTrimRight(sc *bufio.Scanner) (string, bool) {
	if sc.Scan() {
		return trimRight(sc), true
	}
	return "", false
}

func verifyEOFSpace(line int, expected bool, sc *bufio.Scanner) error {
	for ; sc.Scan(); line++ {
		if v := trimRight(sc); v != "" {
			if expected {
				return &Mismatch{Line: line, Expected: v}
			}
			return &Mismatch{Line: line, Actual: v}
		}
	}
	return nil
}

func scanErr(scs ...*bufio.Scanner) error {
	for _, sc := range scs {
		if err := sc.Err(); err != nil {
			return err
		}
	}
	return nil
}

func trimRight(sc *bufio.Scanner) string {
	return string(bytes.TrimRightFunc(sc.Bytes(), unicode.IsSpace))
}
