package force

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is roughly one animation frame.
const DefaultInterval = 16 * time.Millisecond

// StepFunc performs one tick of a run started as generation gen and reports
// whether the run should continue. Implementations that share state with
// other goroutines take their own lock and check [Loop.Current] under it, so
// a tick racing a Stop is discarded instead of applied.
type StepFunc func(gen uint64) (more bool)

// Loop drives a step function from a ticker goroutine.
// At most one run is active; starting a new run supersedes the previous one.
type Loop struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Start begins a new run and returns its generation. Any previous run is
// stopped first. The run ends when step returns false, when ctx is cancelled
// or when [Loop.Stop] is called.
func (l *Loop) Start(ctx context.Context, interval time.Duration, step StepFunc) uint64 {
	if interval <= 0 {
		interval = DefaultInterval
	}

	l.mu.Lock()
	l.stopLocked()
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer l.finish(gen, cancel)

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !l.Current(gen) || !step(gen) {
					return
				}
			}
		}
	}()
	return gen
}

// Stop cancels the active run. It does not wait for the goroutine to exit,
// so it is safe to call while holding a lock the step function takes.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopLocked()
	l.mu.Unlock()
}

func (l *Loop) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}

func (l *Loop) finish(gen uint64, cancel context.CancelFunc) {
	cancel()
	l.mu.Lock()
	if l.gen == gen {
		l.cancel = nil
	}
	l.mu.Unlock()
}

// Current reports whether gen is the active run.
func (l *Loop) Current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil && gen == l.gen
}

// Running reports whether a run is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Wait blocks until the most recent run's goroutine has exited.
func (l *Loop) Wait() {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}
