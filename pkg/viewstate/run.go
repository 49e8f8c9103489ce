package viewstate

import (
	"context"
	"time"

	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/observability"
)

// Tick advances the layout by one step on the caller's goroutine and reports
// whether it has ended. Hosts without a ticker use it instead of RunLayout.
func (v *ViewState) Tick() (ended bool, err error) {
	err = v.update(func() error {
		ended = v.tickLocked()
		return nil
	})
	return ended, err
}

// Converge ticks until the layout ends or maxTicks steps have run and
// returns the number of steps.
func (v *ViewState) Converge(ctx context.Context, maxTicks int) (int, error) {
	var ticks int
	err := v.update(func() error {
		if !v.layout.Running() {
			return nil
		}
		v.stopRun(nil)
		profile := v.layout.Profile().Name
		start := time.Now()
		observability.Layout().OnLayoutStart(ctx, profile, len(v.fres.Nodes))
		ticks = v.layout.Converge(maxTicks)
		observability.Layout().OnLayoutEnd(ctx, profile, ticks, time.Since(start), nil)
		v.recull()
		v.emit(events.LayoutEnded, ticks)
		v.log.Debug("layout converged", "profile", profile, "ticks", ticks, "elapsed", time.Since(start))
		return nil
	})
	return ticks, err
}

// tickLocked runs one step and raises the tick events. Must be called with
// mu held.
func (v *ViewState) tickLocked() bool {
	if !v.layout.Running() {
		return true
	}
	ended := v.layout.Tick()
	v.runInfo.ticks++
	v.recull()
	v.emit(events.LayoutTick, v.layout.Alpha())
	if ended {
		v.emit(events.LayoutEnded, v.runInfo.ticks)
	}
	return ended
}

// RunLayout drives the layout from a background goroutine at the configured
// interval until it ends. The run restarts by itself whenever a later
// mutation makes the layout active again, until ctx is cancelled,
// [ViewState.StopLayout] or [ViewState.Close] is called.
func (v *ViewState) RunLayout(ctx context.Context) error {
	return v.update(func() error {
		v.stopRun(context.Canceled)
		v.runCtx = ctx
		v.kick()
		return nil
	})
}

// StopLayout stops the background run. The layout state is unchanged.
func (v *ViewState) StopLayout() error {
	return v.update(func() error {
		v.runCtx = nil
		v.stopRun(context.Canceled)
		return nil
	})
}

// LayoutRunning reports whether the background run is active.
func (v *ViewState) LayoutRunning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// WaitLayout blocks until the current background run has exited.
func (v *ViewState) WaitLayout() { v.loop.Wait() }

// kick starts a background run when one is wanted and the layout has work
// to do. Must be called with mu held.
func (v *ViewState) kick() {
	if v.runCtx == nil || v.runCtx.Err() != nil || v.closed {
		return
	}
	if v.running || !v.layout.Running() {
		return
	}
	v.running = true
	v.runInfo = runInfo{start: time.Now()}
	observability.Layout().OnLayoutStart(v.runCtx, v.layout.Profile().Name, len(v.fres.Nodes))
	v.log.Debug("layout started", "profile", v.layout.Profile().Name, "nodes", len(v.fres.Nodes))
	v.loop.Start(v.runCtx, v.opts.Interval, v.step)
}

// stopRun cancels the background run, if any. Must be called with mu held.
func (v *ViewState) stopRun(err error) {
	v.loop.Stop()
	if v.running {
		v.running = false
		v.endRun(err)
	}
}

func (v *ViewState) endRun(err error) {
	d := time.Since(v.runInfo.start)
	observability.Layout().OnLayoutEnd(context.Background(), v.layout.Profile().Name, v.runInfo.ticks, d, err)
	v.log.Debug("layout stopped", "ticks", v.runInfo.ticks, "elapsed", d, "err", err)
}

// step is the loop callback. A tick of a superseded run is dropped.
func (v *ViewState) step(gen uint64) bool {
	v.mu.Lock()
	if v.closed || !v.running || !v.loop.Current(gen) {
		v.mu.Unlock()
		return false
	}
	ended := v.tickLocked()
	if ended {
		v.running = false
		v.endRun(nil)
	}
	v.emit(events.HeaderChanged, v.headerLocked())
	evs := v.pending
	v.pending = nil
	v.mu.Unlock()

	for _, e := range evs {
		v.bus.Publish(e)
	}
	return !ended
}
