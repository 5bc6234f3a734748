package jobs

import (
	"log/slog"
	"sync"
)

// Dispatcher runs background job tasks, one goroutine per job. Tasks are
// fire-and-forget from the caller's point of view: no cancellation and no
// concurrency bound. Unlike a bare `go` statement, tasks are tracked by a
// WaitGroup so shutdown and tests can drain in-flight work, and a panic in
// a task is recovered and logged instead of killing the process.
type Dispatcher struct {
	wg  sync.WaitGroup
	log *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

// Dispatch schedules task to run on its own goroutine and returns
// immediately.
func (d *Dispatcher) Dispatch(jobID string, task func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("background task panicked", "job_id", jobID, "panic", r)
			}
		}()
		task()
	}()
}

// Wait blocks until every dispatched task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
