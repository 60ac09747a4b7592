// SPDX-License-Identifier: EPL-2.0

// Package queue runs control-domain operations one at a time on a single
// goroutine.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotStarted = errors.New("queue not started")
	ErrClosed     = errors.New("queue closed")
)

// drainTimeout bounds how long Close keeps running queued operations.
const drainTimeout = 50 * time.Millisecond

// Op is one queued operation. It should be quick; ctx is canceled on
// shutdown.
type Op interface {
	Apply(ctx context.Context) error
}

// Func adapts a function to Op.
type Func func(ctx context.Context) error

func (f Func) Apply(ctx context.Context) error { return f(ctx) }

// Queue serializes operations onto one worker goroutine.
type Queue struct {
	ch      chan Op
	onError func(error)

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mtx     sync.Mutex
	started bool
}

// New returns a queue that buffers up to buffer operations. onError, when
// not nil, receives the error of every failed operation.
func New(buffer int, onError func(error)) *Queue {
	if buffer <= 0 {
		buffer = 32
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		ch:      make(chan Op, buffer),
		onError: onError,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker. Calling it again does nothing.
func (q *Queue) Start() {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.started {
		return
	}
	q.started = true

	q.wg.Add(1)
	go q.run()
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case op := <-q.ch:
			q.apply(op)
		}
	}
}

// drain runs what is already queued, for a bounded time.
func (q *Queue) drain() {
	deadline := time.After(drainTimeout)
	for {
		select {
		case op := <-q.ch:
			q.apply(op)
		case <-deadline:
			return
		default:
			return
		}
	}
}

func (q *Queue) apply(op Op) {
	if op == nil {
		return
	}
	if err := op.Apply(q.ctx); err != nil && q.onError != nil {
		q.onError(err)
	}
}

// Enqueue adds op without waiting for it to run.
func (q *Queue) Enqueue(op Op) error {
	q.mtx.Lock()
	started := q.started
	q.mtx.Unlock()

	if !started {
		return ErrNotStarted
	}

	select {
	case <-q.ctx.Done():
		return ErrClosed
	default:
	}

	select {
	case q.ch <- op:
		return nil
	case <-q.ctx.Done():
		return ErrClosed
	}
}

// RunSync enqueues fn and waits for its result.
func (q *Queue) RunSync(fn Func) error {
	done := make(chan error, 1)

	err := q.Enqueue(Func(func(ctx context.Context) error {
		err := fn(ctx)
		done <- err
		return err
	}))
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-q.ctx.Done():
		// the drain may still have run it
		select {
		case err := <-done:
			return err
		default:
			return ErrClosed
		}
	}
}

// Close stops the worker and waits for it to exit.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}
