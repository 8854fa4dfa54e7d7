package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/service/insights"
)

// Runner executes one Insights pass. *insights.Service satisfies it.
type Runner interface {
	Run(ctx context.Context, onlyID *int64) (*insights.RunResult, error)
}

// InsightsPoller calls the Insights runner on a fixed interval. It is an
// alternative to an external cron hitting the run endpoint. Overlapping runs
// are serialized per campaign by the runner's lease, which re-checks
// due-ness once held.
type InsightsPoller struct {
	runner       Runner
	pollInterval time.Duration

	runs   int64
	sent   int64
	errors int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewInsightsPoller creates a poller. interval must be positive.
func NewInsightsPoller(runner Runner, interval time.Duration) *InsightsPoller {
	return &InsightsPoller{runner: runner, pollInterval: interval}
}

// Start begins the polling loop.
func (p *InsightsPoller) Start(parent context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("insights poller already running")
	}
	if p.pollInterval <= 0 {
		return fmt.Errorf("insights poller interval must be positive, got %v", p.pollInterval)
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(parent)

	logger.Info("insights poller starting", "interval", p.pollInterval.String())
	p.wg.Add(1)
	go p.loop()
	return nil
}

// Stop cancels the loop and waits for an in-flight run to finish. A run in
// progress is not interrupted.
func (p *InsightsPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	logger.Info("insights poller stopped",
		"runs", atomic.LoadInt64(&p.runs),
		"sent", atomic.LoadInt64(&p.sent),
		"errors", atomic.LoadInt64(&p.errors))
}

// Running reports whether the loop is active.
func (p *InsightsPoller) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *InsightsPoller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *InsightsPoller) tick() {
	atomic.AddInt64(&p.runs, 1)
	res, err := p.runner.Run(p.ctx, nil)
	if err != nil {
		atomic.AddInt64(&p.errors, 1)
		logger.Error("insights poll run failed", "error", err)
		return
	}
	atomic.AddInt64(&p.sent, int64(res.Sent))
	if len(res.Processed) > 0 || len(res.Skipped) > 0 {
		logger.Info("insights poll run",
			"processed", len(res.Processed),
			"skipped", len(res.Skipped),
			"sent", res.Sent,
			"failed", res.Failed)
	}
}
