package board

import (
	"context"
	"sync"
)

// job is the unit of work dispatched to a worker.
type job[T, R any] struct {
	payload T
	result  chan<- jobResult[T, R]
}

type jobResult[T, R any] struct {
	payload T
	value   R
	err     error
}

// workerPool is a fixed-size goroutine pool with a bounded input queue.
type workerPool[T, R any] struct {
	mu      sync.RWMutex // guards closed against Submit racing Drain
	closed  bool
	queue   chan job[T, R]
	process func(ctx context.Context, t T) (R, error)
	wg      sync.WaitGroup
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T, R any](ctx context.Context, n, cap int, fn func(context.Context, T) (R, error)) *workerPool[T, R] {
	p := &workerPool[T, R]{
		queue:   make(chan job[T, R], cap),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T, R]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			v, err := p.process(ctx, j.payload)
			if j.result != nil {
				j.result <- jobResult[T, R]{payload: j.payload, value: v, err: err}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues a job without blocking. It returns false if the queue is full
// or the pool is draining. result must have room for the reply.
func (p *workerPool[T, R]) Submit(t T, result chan<- jobResult[T, R]) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- job[T, R]{payload: t, result: result}:
		return true
	default:
		return false
	}
}

// Drain closes the queue and waits for all workers to finish.
func (p *workerPool[T, R]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T, R]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T, R]) QueueCap() int {
	return cap(p.queue)
}
