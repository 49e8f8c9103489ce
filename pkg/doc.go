// Package pkg provides the core libraries for netview network exploration.
//
// # Overview
//
// Netview lays out node/edge networks with a force simulation and keeps the
// complete state of a view (pan and zoom, filters, visual encodings, layout
// and saved snapshots) in one aggregate. The pkg directory is organized into
// four areas:
//
//  1. Data - the network arena, field classification and sessions
//  2. View - the pipeline stages and the [viewstate] aggregate that owns them
//  3. Persistence - stores, key/value backends and the session file format
//  4. Output - static rendering of a view
//
// # Architecture
//
// The data flow through a view:
//
//	Session (nodes, edges, snapshots)
//	         ↓
//	    [network] dataset + [fields] classification
//	         ↓
//	    [filter] pipeline (fnodes, fedges)
//	         ↓
//	    [layout] coordinator running [force] on the filtered graph
//	         ↓
//	    [visibility] culling against the [viewport] focus area
//	         ↓
//	    [events] notifications → renderers ([render], the terminal explorer)
//
// Every mutation goes through [viewstate.ViewState], which recomputes the
// downstream stages, marks the active snapshot dirty where the change is
// savable and publishes events once the lock is released.
//
// # Quick Start
//
// Open a stored session and render a view of it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/netview/pkg/config"
//	    "github.com/matzehuels/netview/pkg/render"
//	    "github.com/matzehuels/netview/pkg/snapshot"
//	    "github.com/matzehuels/netview/pkg/store"
//	    "github.com/matzehuels/netview/pkg/viewstate"
//	)
//
//	// 1. Open the store and load a session
//	st, _ := store.Open(ctx, config.DefaultSettings().Store, nil)
//	sess, _ := st.GetSession(ctx, id)
//
//	// 2. Open a view without a snapshot and let the layout settle
//	v, _ := viewstate.New(sess, snapshot.None, viewstate.Options{Store: st})
//	v.Converge(ctx, 300)
//
//	// 3. Pin the layout and save it
//	v.Stick()
//	v.Save(ctx, "settled")
//
//	// 4. Render to SVG
//	var sc render.Scene
//	v.ReadFiltered(func(f viewstate.Frame) { sc = render.Build(f) })
//	svg := render.RenderSVG(sc)
//
// # Main Packages
//
// ## Data
//
// [network] - Node and edge arena built from flat field maps. Edges reference
// endpoints by id or index; unresolvable edges are dropped and counted.
//
// [fields] - Classifies every node and edge field as numeric (with a robust
// domain) or categorical (with its groups). Overrides win over inference.
//
// [session] - The unit of persistence: a named network with its snapshots and
// optional view defaults.
//
// ## View
//
// [viewport] - Pan/zoom transform, view box and the margin-expanded focus
// area used for culling.
//
// [filter] - Ordered filter pipeline over qualified field names. Node
// filters induce the edge set; edge filters leave nodes alone.
//
// [visibility] - Culls the filtered nodes and edges to the focus area and
// suppresses edges above the configured threshold.
//
// [force] - Velocity Verlet simulation with link, charge, collision, center
// and positioning forces, plus the ticker loop that drives it.
//
// [layout] - Coordinates the simulation with the filtered graph: profiles,
// pinning, drag and the active/pinned state.
//
// [appearance] - Visual channels (node color, size, label, image; edge color,
// width, label) bound to fields through scales.
//
// [snapshot] - Saved view states and the manager that tracks the active
// snapshot and its dirty flag.
//
// [events] - Notification registry with per-kind subscriptions and named
// single-subscriber slots.
//
// [viewstate] - The aggregate owning all of the above for one view.
//
// ## Persistence
//
// [store] - Session stores: a key/value store over [kv] backends (file,
// Redis) and a MongoDB store.
//
// [kv] - Byte-oriented file and Redis backends.
//
// [fileio] - Reads and writes session documents, gzip-aware, from files and
// URLs (via [httputil]).
//
// [config] - User settings (TOML) and the per-view configuration.
//
// ## Output
//
// [render] - Scenes built from view frames, serialized as SVG, DOT (with a
// Graphviz neato pass), JSON, PDF and PNG.
//
// [observability] - Hooks for view updates, layout runs, store calls and HTTP
// fetches, with a logging implementation.
//
// [errors] - Coded errors shared across packages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/viewstate/...   # Specific package
//	go test -run Example          # Examples only
//
// Redis backend and MongoDB store tests run when NETVIEW_REDIS_ADDR and
// NETVIEW_MONGO_URI point at live servers.
package pkg
