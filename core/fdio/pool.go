package fdio

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize is the number of workers used when a pool is created with a
// non-positive size.
const DefaultPoolSize = 8

// Pool is a bounded set of workers for operations that would otherwise block
// a goroutine on a system call: reads and writes on handles the netpoller
// can't register, and process creation.
type Pool struct {
	size int64
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
}

// NewPool creates a pool that runs at most size operations at once.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		size: int64(size),
		sem:  semaphore.NewWeighted(int64(size)),
	}
}

// Size returns the maximum number of concurrent operations.
func (p *Pool) Size() int {
	return int(p.size)
}

// Go runs fn on a worker once one is free. It returns an error only if ctx
// is done before a worker becomes available.
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// Do runs fn on a worker and waits for it to finish. If ctx is done first the
// operation is abandoned and ctx.Err() is returned; fn keeps running in the
// background until it returns.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	if err := p.Go(ctx, func() { done <- fn() }); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every operation started on the pool has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
