package judge

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/criyle/go-rtest/problem"
)

type fakeExecutor struct {
	mu       sync.Mutex
	running  int32
	maxSeen  int32
	statuses map[string]Status
	fail     string
}

func (f *fakeExecutor) Exec(ctx context.Context, artifact string, c problem.Case) (*Result, error) {
	n := atomic.AddInt32(&f.running, 1)
	defer atomic.AddInt32(&f.running, -1)
	f.mu.Lock()
	if n > f.maxSeen {
		f.maxSeen = n
	}
	f.mu.Unlock()
	time.Sleep(5 * time.Millisecond)

	if c.ID == f.fail {
		return nil, errors.New("executor broken")
	}
	return &Result{Case: c, Status: f.statuses[c.ID]}, nil
}

func TestStatusString(t *testing.T) {
	if StatusWrongAnswer.String() != "Wrong Answer" {
		t.Errorf("got %q", StatusWrongAnswer.String())
	}
	if Status(100).String() != "Invalid" {
		t.Errorf("got %q", Status(100).String())
	}
}

func TestRunAll(t *testing.T) {
	cases := []problem.Case{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}
	e := &fakeExecutor{statuses: map[string]Status{
		"1": StatusAccepted,
		"2": StatusWrongAnswer,
		"3": StatusAccepted,
		"4": StatusRuntimeError,
		"5": StatusAccepted,
	}}
	rs, err := RunAll(context.Background(), e, "/w/a", cases, 2)
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	var got []string
	for _, r := range rs {
		got = append(got, r.Case.ID)
	}
	if !reflect.DeepEqual(got, []string{"1", "2", "3", "4", "5"}) {
		t.Errorf("result order = %q", got)
	}
	if n := Accepted(rs); n != 3 {
		t.Errorf("accepted = %d, want 3", n)
	}
	if e.maxSeen > 2 {
		t.Errorf("parallelism exceeded: %d", e.maxSeen)
	}
}

func TestRunAllError(t *testing.T) {
	cases := []problem.Case{{ID: "1"}, {ID: "2"}}
	e := &fakeExecutor{fail: "2"}
	if _, err := RunAll(context.Background(), e, "/w/a", cases, 0); err == nil {
		t.Error("expected executor error")
	}
}
