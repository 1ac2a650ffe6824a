package main

import (
	"context"
	"sync"
	"time"
)

// pool runs update handlers with bounded concurrency, each under its own
// timeout.
type pool struct {
	slots   chan struct{}
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newPool(size int, timeout time.Duration) *pool {
	if size < 1 {
		size = 1
	}
	return &pool{slots: make(chan struct{}, size), timeout: timeout}
}

// Go blocks until a slot is free or ctx is done. It reports whether fn was
// started; nothing starts once Wait has been called.
func (p *pool) Go(ctx context.Context, fn func(context.Context) error) bool {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	p.mu.Lock()
	if p.closed || ctx.Err() != nil {
		p.mu.Unlock()
		<-p.slots
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer func() { <-p.slots }()

		reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		_ = fn(reqCtx)
	}()
	return true
}

func (p *pool) InFlight() int {
	return len(p.slots)
}

// Wait stops accepting work and waits for running handlers.
func (p *pool) Wait() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}
