// Package judge runs a compiled artifact against discovered test cases and
// compares its output with the expected answers.
package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/criyle/go-rtest/problem"
	"golang.org/x/sync/errgroup"
)

// Executor runs artifact with the input of c and judges its output against
// the answer of c. An error means the judge itself failed, a wrong program
// is reported through Result.Status.
type Executor interface {
	Exec(ctx context.Context, artifact string, c problem.Case) (*Result, error)
}

// Result is the verdict for a single test case
type Result struct {
	Case       problem.Case
	Status     Status
	ExitStatus int
	Time       time.Duration
	Memory     uint64 // peak resident set size in bytes, 0 if not sampled
	Error      string // mismatch description or program stderr
}

// RunAll runs every case with at most parallelism concurrent executions
// (unlimited if parallelism <= 0). Results are in the order of cases. The
// first executor error cancels the remaining cases.
func RunAll(ctx context.Context, e Executor, artifact string, cases []problem.Case, parallelism int) ([]Result, error) {
	results := make([]Result, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			r, err := e.Exec(ctx, artifact, c)
			if err != nil {
				return fmt.Errorf("test %s: %w", c.ID, err)
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Accepted counts accepted results
func Accepted(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusAccepted {
			n++
		}
	}
	return n
}
