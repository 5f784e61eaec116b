package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one poll. Errors are logged and never stop the poller.
type Task func(ctx context.Context) error

// Poller runs a task immediately and then on every tick until stopped.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches a poller bound to ctx. Cancelling ctx or calling Stop ends it.
func Start(ctx context.Context, name string, interval time.Duration, task Task, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.loop(ctx)
	return p
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	p.run(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("poll panicked", "poller", p.name, "panic", r)
		}
	}()
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn("poll failed", "poller", p.name, "error", err)
	}
}

// Stop cancels the poller and waits for an in-flight run to finish.
func (p *Poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}

// Done is closed once the poller has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
