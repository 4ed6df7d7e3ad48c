// Package lifecycle coordinates startup and shutdown hooks across the
// systems that make up the server.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Coordinator manages startup and shutdown hooks for the application lifecycle.
// Shutdown runs at most once; later calls return the first result.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	readyMu    sync.RWMutex

	cleanupMu sync.Mutex
	cleanup   []func()

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// OnCleanup registers a function to run after every shutdown hook has
// returned. Cleanup functions run sequentially in registration order.
func (c *Coordinator) OnCleanup(fn func()) {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()
	c.cleanup = append(c.cleanup, fn)
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown clears the ready flag, cancels the context, waits for shutdown
// hooks and then runs cleanup functions, all within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.shutdownOnce.Do(func() {
		c.readyMu.Lock()
		c.ready = false
		c.readyMu.Unlock()

		c.cancel()

		done := make(chan struct{})
		go func() {
			c.shutdownWg.Wait()

			c.cleanupMu.Lock()
			cleanup := c.cleanup
			c.cleanupMu.Unlock()

			for _, fn := range cleanup {
				fn()
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			c.shutdownErr = fmt.Errorf("shutdown timeout after %v", timeout)
		}
	})
	return c.shutdownErr
}
