package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every hook as a debug log line.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnFilter(filters, nodes, edges int, d time.Duration) {
	h.Logger.Debug("filtered", "filters", filters, "nodes", nodes, "edges", edges, "took", d)
}

func (h LogHooks) OnCull(nodes, edges int, suppressed bool) {
	h.Logger.Debug("culled", "nodes", nodes, "edges", edges, "edges_suppressed", suppressed)
}

func (h LogHooks) OnLayoutStart(_ context.Context, profile string, nodes int) {
	h.Logger.Debug("layout started", "profile", profile, "nodes", nodes)
}

func (h LogHooks) OnLayoutEnd(_ context.Context, profile string, ticks int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("layout stopped", "profile", profile, "ticks", ticks, "took", d, "err", err)
		return
	}
	h.Logger.Debug("layout ended", "profile", profile, "ticks", ticks, "took", d)
}

func (h LogHooks) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("store op failed", "backend", backend, "op", op, "took", d, "err", err)
		return
	}
	h.Logger.Debug("store op", "backend", backend, "op", op, "took", d)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ ViewHooks   = LogHooks{}
	_ LayoutHooks = LogHooks{}
	_ StoreHooks  = LogHooks{}
	_ HTTPHooks   = LogHooks{}
)
