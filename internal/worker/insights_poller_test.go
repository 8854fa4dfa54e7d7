package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumewave/agency-site/internal/service/insights"
)

type countingRunner struct {
	calls int64
	err   error
}

func (c *countingRunner) Run(context.Context, *int64) (*insights.RunResult, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &insights.RunResult{Processed: []int64{1}, Sent: 2}, nil
}

func TestInsightsPoller_StartStop(t *testing.T) {
	runner := &countingRunner{}
	p := NewInsightsPoller(runner, 10*time.Millisecond)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !p.Running() {
		t.Error("poller should be running after Start()")
	}
	if err := p.Start(context.Background()); err == nil {
		t.Error("double Start() should return error")
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runner.calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	if atomic.LoadInt64(&runner.calls) < 2 {
		t.Fatalf("runner calls = %d, want >= 2", runner.calls)
	}
	if p.Running() {
		t.Error("poller should not be running after Stop()")
	}
	if atomic.LoadInt64(&p.sent) < 4 {
		t.Errorf("sent = %d, want >= 4", p.sent)
	}
	p.Stop()
}

func TestInsightsPoller_RejectsZeroInterval(t *testing.T) {
	p := NewInsightsPoller(&countingRunner{}, 0)
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestInsightsPoller_CountsErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("db down")}
	p := NewInsightsPoller(runner, time.Hour)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	defer p.cancel()

	p.tick()
	p.tick()
	if p.errors != 2 {
		t.Errorf("errors = %d, want 2", p.errors)
	}
}

type deadlineRunner struct{ hasDeadline bool }

func (d *deadlineRunner) Run(ctx context.Context, _ *int64) (*insights.RunResult, error) {
	_, d.hasDeadline = ctx.Deadline()
	return &insights.RunResult{}, nil
}

func TestInsightsPoller_TickHasNoDeadline(t *testing.T) {
	runner := &deadlineRunner{}
	p := NewInsightsPoller(runner, time.Hour)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	defer p.cancel()

	p.tick()
	if runner.hasDeadline {
		t.Error("poll runs must not carry a deadline")
	}
}
