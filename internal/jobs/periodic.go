package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

// Task is one unit of background work run on a schedule.
type Task interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// Periodic runs a task once at start and then on every tick until ctx ends.
// A failing or panicking run is logged and the next tick runs regardless.
type Periodic struct {
	log      *logger.Logger
	task     Task
	interval time.Duration
}

func NewPeriodic(baseLog *logger.Logger, task Task, interval time.Duration) *Periodic {
	return &Periodic{
		log:      baseLog.With("component", "Periodic", "task", task.Name()),
		task:     task,
		interval: interval,
	}
}

func (p *Periodic) Run(ctx context.Context) error {
	p.log.Info("periodic task started", "interval", p.interval.String())
	p.runSafely(ctx)

	if p.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("periodic task stopped")
			return nil
		case <-ticker.C:
			p.runSafely(ctx)
		}
	}
}

func (p *Periodic) runSafely(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("periodic task panic", "panic", fmt.Sprint(r))
		}
	}()
	if err := p.task.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Warn("periodic task failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	p.log.Debug("periodic task finished", "duration_ms", time.Since(start).Milliseconds())
}
