// Package scheduler runs the dashboard's periodic backend fetches.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrAlreadyStarted = errors.New("scheduler already started")

// Task is one periodic job. Every <= 0 runs it exactly once.
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Scheduler starts every task immediately and then on its own ticker. Each
// invocation gets its own goroutine so a slow run never delays the next tick.
type Scheduler struct {
	tasks  []Task
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stopOnce sync.Once
}

func New(logger *slog.Logger, tasks ...Task) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tasks:  tasks,
		logger: logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}
	s.logger.Info("scheduler started", "tasks", len(s.tasks))
	return nil
}

// Stop cancels all tickers and in-flight runs and waits for the tick loops to
// exit. Idempotent; safe to call before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.started = true
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		s.logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	s.fire(ctx, task)
	if task.Every <= 0 {
		return
	}

	ticker := time.NewTicker(task.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, task)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, task Task) {
	go func() {
		if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("task run failed", "task", task.Name, "error", err)
		}
	}()
}
