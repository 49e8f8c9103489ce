// Package viewstate is the view-state engine of netview.
//
// A [ViewState] is built from one session and one snapshot index and owns
// everything a view needs: the node/edge arena, the classified fields, the
// viewport, the filter list and its result, the visible subset, the layout
// coordinator, the appearance, the view configuration and the snapshot
// manager with its dirty flag.
//
// # Data flow
//
//	session ─► dataset ─► fields (classified once)
//	                 └──► filter pipeline ─► fnodes/fedges ─► layout
//	                                            └─► visibility cull ─► vnodes/vedges
//
// Every filter change reruns the pipeline and re-seeds the layout; every
// coordinate, filter or transform change reruns the cull.
//
// # Concurrency
//
// All methods are safe for concurrent use. Mutations are serialised by one
// mutex, so a layout tick running on the [ViewState.RunLayout] goroutine
// never interleaves with a UI call. Events are queued while the lock is held
// and published after it is released, in the order they were raised; a
// handler may therefore call back into the view. Handlers may run on the
// layout goroutine.
//
// Applying a snapshot, switching to defaults and [ViewState.Close] stop the
// running layout before touching node positions; a tick that loses that race
// is discarded.
//
// # Dirty flag
//
// Changes to filters, appearance, configuration, transform or layout pin
// state set the dirty flag. Only applying a snapshot, saving and discarding
// clear it. Hosts use [ViewState.Dirty] to block session and snapshot
// switches while there are unsaved edits.
package viewstate
