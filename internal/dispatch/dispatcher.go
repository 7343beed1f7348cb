// Package dispatch runs fire-and-forget work in the background while keeping a
// handle on every task, so shutdown and tests can wait for completion.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("dispatcher is shut down")

// Task is the handle of one dispatched function.
type Task struct {
	ID   string
	Name string

	done chan struct{}
	err  error
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err reports the task's error, including recovered panics. Only valid after
// Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

type Dispatcher struct {
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New returns a Dispatcher. Each task gets its own deadline of timeout; zero
// means no deadline.
func New(timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{timeout: timeout, logger: logger}
}

// Go starts fn on its own goroutine. The task context keeps ctx's values but
// not its cancellation, so work outlives the HTTP request that triggered it.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context) error) *Task {
	task := &Task{ID: uuid.NewString(), Name: name, done: make(chan struct{})}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		task.err = ErrClosed
		close(task.done)
		d.logger.Warn("task rejected, dispatcher shut down", "task", name)
		return task
	}
	d.wg.Add(1)
	d.mu.Unlock()

	taskCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if d.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(taskCtx, d.timeout)
	}

	go func() {
		start := time.Now()
		defer d.wg.Done()
		defer close(task.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				task.err = fmt.Errorf("task %s panicked: %v", name, r)
				d.logger.Error("background task panicked", "task", name, "id", task.ID, "panic", fmt.Sprint(r))
			}
		}()

		task.err = fn(taskCtx)
		if task.err != nil {
			d.logger.Error("background task failed", "task", name, "id", task.ID, "error", task.err)
			return
		}
		d.logger.Debug("background task completed", "task", name, "id", task.ID, "duration_ms", time.Since(start).Milliseconds())
	}()

	return task
}

// Wait blocks until every dispatched task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting tasks and waits for running ones until ctx ends.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
