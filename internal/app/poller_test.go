package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/five82/tinsel/internal/scene"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) Check(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestStartPoller_ChecksImmediatelyAndOnTicks(t *testing.T) {
	checker := &countingChecker{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartPoller(ctx, checker, 5*time.Millisecond, zaptest.NewLogger(t))

	deadline := time.After(2 * time.Second)
	for checker.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("calls = %d, want at least 3", checker.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop after cancel")
	}
}

func TestStartPoller_FirstCheckBeforeFirstTick(t *testing.T) {
	checker := &countingChecker{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartPoller(ctx, checker, time.Hour, nil)

	deadline := time.After(2 * time.Second)
	for checker.calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatalf("no immediate check")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
	if got := checker.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStartPoller_SurvivesErrors(t *testing.T) {
	for _, err := range []error{scene.ErrBusy, errors.New("disk full")} {
		checker := &countingChecker{err: err}
		ctx, cancel := context.WithCancel(context.Background())
		done := StartPoller(ctx, checker, 2*time.Millisecond, zaptest.NewLogger(t))

		deadline := time.After(2 * time.Second)
		for checker.calls.Load() < 3 {
			select {
			case <-deadline:
				t.Fatalf("poller stopped after %v", err)
			case <-time.After(time.Millisecond):
			}
		}
		cancel()
		<-done
	}
}
