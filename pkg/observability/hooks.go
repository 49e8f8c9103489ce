// Package observability lets the binary attach instrumentation to the
// engine without the engine depending on it.
//
// Four hook interfaces cover the places worth watching: the view pipeline
// ([ViewHooks]), layout runs ([LayoutHooks]), store calls ([StoreHooks]) and
// HTTP fetches ([HTTPHooks]). Packages read the current hooks through
// [View], [Layout], [Store] and [HTTP]; until something is registered these
// return [Noop].
//
// The CLI registers [LogHooks] when run with --verbose:
//
//	observability.Register(observability.LogHooks{Logger: logger})
//
// Register once at startup. Hooks are called synchronously on the
// instrumented goroutine, some of them while the view lock is held, and
// must not call back into the view.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ViewHooks observes the in-memory pipeline stages. They take no context.
type ViewHooks interface {
	OnFilter(filters, nodes, edges int, duration time.Duration)
	OnCull(nodes, edges int, edgesSuppressed bool)
}

// LayoutHooks observes simulation runs. err is non-nil when a run was
// cancelled.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, profile string, nodes int)
	OnLayoutEnd(ctx context.Context, profile string, ticks int, duration time.Duration, err error)
}

// StoreHooks observes store operations such as "put_session".
type StoreHooks interface {
	OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// HTTPHooks observes outgoing requests. OnError fires for transport
// failures only; error statuses arrive through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// Noop implements every hook interface and does nothing.
type Noop struct{}

func (Noop) OnFilter(int, int, int, time.Duration)                                  {}
func (Noop) OnCull(int, int, bool)                                                  {}
func (Noop) OnLayoutStart(context.Context, string, int)                             {}
func (Noop) OnLayoutEnd(context.Context, string, int, time.Duration, error)         {}
func (Noop) OnStoreOp(context.Context, string, string, time.Duration, error)        {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}

// hookSet is swapped as a whole so readers never lock.
type hookSet struct {
	view   ViewHooks
	layout LayoutHooks
	store  StoreHooks
	http   HTTPHooks
}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Register installs h for every hook interface it implements.
func Register(h any) {
	update(func(s *hookSet) {
		if v, ok := h.(ViewHooks); ok {
			s.view = v
		}
		if l, ok := h.(LayoutHooks); ok {
			s.layout = l
		}
		if st, ok := h.(StoreHooks); ok {
			s.store = st
		}
		if hh, ok := h.(HTTPHooks); ok {
			s.http = hh
		}
	})
}

// SetViewHooks installs h; nil is ignored.
func SetViewHooks(h ViewHooks) {
	if h != nil {
		update(func(s *hookSet) { s.view = h })
	}
}

// SetLayoutHooks installs h; nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		update(func(s *hookSet) { s.layout = h })
	}
}

// SetStoreHooks installs h; nil is ignored.
func SetStoreHooks(h StoreHooks) {
	if h != nil {
		update(func(s *hookSet) { s.store = h })
	}
}

// SetHTTPHooks installs h; nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func View() ViewHooks     { return current.Load().view }
func Layout() LayoutHooks { return current.Load().layout }
func Store() StoreHooks   { return current.Load().store }
func HTTP() HTTPHooks     { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&hookSet{view: Noop{}, layout: Noop{}, store: Noop{}, http: Noop{}})
}
