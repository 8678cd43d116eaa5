package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	if _, err := NewSweeper(&countingPurger{}, "not a schedule"); err == nil {
		t.Fatalf("expected schedule error")
	}
}

func TestSweepCallsPurger(t *testing.T) {
	purger := &countingPurger{}
	s, err := NewSweeper(purger, "")
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Sweep()
	purger.err = errors.New("redis down")
	s.Sweep()
	if purger.calls.Load() != 2 {
		t.Fatalf("expected 2 purges, got %d", purger.calls.Load())
	}
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	purger := &countingPurger{}
	s, err := NewSweeper(purger, "@every 1s")
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for purger.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if purger.calls.Load() == 0 {
		t.Fatalf("expected scheduled sweep to run")
	}
}
