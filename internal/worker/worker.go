// Package worker bounds the number of goroutines used for I/O-bound work such as stat-ing entity
// directories or reading script files during a scan.
//
// Tasks must not mutate shared structures without their own synchronization; the pool only
// limits concurrency and collects the errors returned by tasks.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// DefaultMaxWorkers caps filesystem concurrency when no explicit value is configured.
const DefaultMaxWorkers = 40

// Task represents a unit of work that can be executed
type Task func() error

// Pool manages concurrent task execution with a configurable number of workers
type Pool struct {
	semaphore   chan struct{}
	allErrors   *errors.MultiError
	wg          sync.WaitGroup
	maxWorkers  int
	allErrorsMu sync.Mutex
	isStopping  atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified maximum number of concurrent workers
func NewWorkerPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	return &Pool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// MaxWorkers returns the concurrency limit.
func (wp *Pool) MaxWorkers() int {
	return wp.maxWorkers
}

// Submit starts a goroutine for the task that runs once a worker slot is free.
// Tasks submitted after Stop are dropped.
func (wp *Pool) Submit(task Task) {
	if wp.isStopping.Load() {
		return
	}

	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()

		wp.semaphore <- struct{}{}

		defer func() { <-wp.semaphore }()

		var err error

		func() {
			defer errors.Recover(func(cause error) { err = cause })

			err = task()
		}()

		wp.appendError(err)
	}()
}

// Wait blocks until all tasks are completed and returns the collected errors, if any.
func (wp *Pool) Wait() error {
	wp.wg.Wait()

	wp.allErrorsMu.Lock()
	defer wp.allErrorsMu.Unlock()

	return wp.allErrors.ErrorOrNil()
}

// Stop prevents new submissions. Running tasks are not interrupted.
func (wp *Pool) Stop() {
	wp.isStopping.Store(true)
}

// IsStopping returns whether the pool is in the process of stopping
func (wp *Pool) IsStopping() bool {
	return wp.isStopping.Load()
}

func (wp *Pool) appendError(err error) {
	if err == nil {
		return
	}

	wp.allErrorsMu.Lock()
	wp.allErrors = wp.allErrors.Append(err)
	wp.allErrorsMu.Unlock()
}
