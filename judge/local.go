package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/criyle/go-rtest/compiler"
	"github.com/criyle/go-rtest/diff"
	"github.com/criyle/go-rtest/problem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 10 * time.Millisecond
	defaultOutputLimit  = 64 << 20
	waitDelay           = 100 * time.Millisecond
	maxErrorLen         = 4 << 10
)

var _ Executor = (*Local)(nil)

// Local runs the artifact directly on the host without isolation. The input
// file is the stdin of the program and its stdout is compared with the answer
// file under Mode.
type Local struct {
	Mode         diff.Mode
	TimeLimit    time.Duration // wall time limit, 0 means none
	OutputLimit  int64         // stdout size limit in bytes, 0 means 64 MiB
	PollInterval time.Duration // memory sampling interval
	Logger       *zap.Logger
}

// Exec implements Executor
func (l *Local) Exec(ctx context.Context, artifact string, c problem.Case) (*Result, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("test", c.ID))

	in, err := os.Open(c.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if l.TimeLimit > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, l.TimeLimit)
		defer cancel()
	}

	// a program over the output limit is killed at once
	stdout := newOutputBuffer(l.outputLimit(), cancel)
	stderr := newOutputBuffer(maxErrorLen, nil)
	cmd := exec.CommandContext(runCtx, artifact)
	cmd.Dir = filepath.Dir(artifact)
	cmd.Stdin = in
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", artifact, err)
	}
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	memCh := watchMemory(monitorCtx, int32(cmd.Process.Pid), l.pollInterval())
	waitErr := cmd.Wait()
	elapsed := time.Since(start)
	stopMonitor()

	r := &Result{
		Case:   c,
		Time:   elapsed,
		Memory: <-memCh,
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case stdout.Exceeded():
		r.Status = StatusOutputLimitExceeded
		r.ExitStatus = exitStatus(waitErr)
	case timedOut(runCtx, waitErr):
		r.Status = StatusTimeLimitExceeded
		r.ExitStatus = -1
	case errors.As(waitErr, &exitErr):
		r.Status = StatusRuntimeError
		r.ExitStatus = exitErr.ExitCode()
		r.Error = errorText(stderr)
	case waitErr != nil:
		return nil, fmt.Errorf("wait %s: %w", artifact, waitErr)
	default:
		if err := l.compare(c.Answer, stdout.Bytes(), r); err != nil {
			return nil, err
		}
	}
	logger.Debug("test finished",
		zap.Stringer("status", r.Status),
		zap.Duration("time", r.Time),
		zap.Uint64("memory", r.Memory))
	return r, nil
}

func (l *Local) compare(answer string, output []byte, r *Result) error {
	f, err := os.Open(answer)
	if err != nil {
		return fmt.Errorf("open answer: %w", err)
	}
	defer f.Close()

	err = diff.Compare(l.Mode, f, bytes.NewReader(output))
	var m *diff.Mismatch
	switch {
	case err == nil:
		r.Status = StatusAccepted
	case errors.As(err, &m):
		r.Status = StatusWrongAnswer
		r.Error = truncate(m.Error())
	default:
		return fmt.Errorf("compare with %s: %w", answer, err)
	}
	return nil
}

func (l *Local) outputLimit() int64 {
	if l.OutputLimit > 0 {
		return l.OutputLimit
	}
	return defaultOutputLimit
}

// timedOut reports whether the program was killed by the wall time limit.
// A program that exited on its own is never a timeout even if the deadline
// passed before Wait returned.
func timedOut(runCtx context.Context, waitErr error) bool {
	return waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
}

func exitStatus(waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if waitErr != nil {
		return -1
	}
	return 0
}

func (l *Local) pollInterval() time.Duration {
	if l.PollInterval > 0 {
		return l.PollInterval
	}
	return defaultPollInterval
}

// watchMemory samples the resident set size of pid until ctx is done and
// sends the peak value
func watchMemory(ctx context.Context, pid int32, interval time.Duration) <-chan uint64 {
	ch := make(chan uint64, 1)
	go func() {
		var peak uint64
		defer func() { ch <- peak }()

		p, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if m, err := p.MemoryInfoWithContext(ctx); err == nil && m.RSS > peak {
				peak = m.RSS
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

// errorText decodes a capped stderr without splitting the last rune
func errorText(b *outputBuffer) string {
	if !b.Exceeded() {
		return compiler.Text(b.Bytes())
	}
	p := b.buf.Bytes()
	return compiler.Text(p[:runeBoundary(p, int(b.limit))]) + "..."
}

// runeBoundary returns the largest index not above n that starts a rune
func runeBoundary[T string | []byte](s T, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func truncate(s string) string {
	if len(s) <= maxErrorLen {
		return s
	}
	return s[:runeBoundary(s, maxErrorLen)] + "..."
}
