package viewstate

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/fields"
	"github.com/matzehuels/netview/pkg/filter"
	"github.com/matzehuels/netview/pkg/force"
	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/visibility"
)

// Default view box used when Options leaves it unset.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Options configures a view.
type Options struct {
	// Store persists snapshot changes. Nil keeps snapshots in memory only.
	Store snapshot.Persister

	// Classifier infers field kinds; its Overrides win over inference.
	Classifier fields.Classifier

	// Width and Height set the initial view box in pixels.
	Width, Height float64

	// Interval is the tick period of RunLayout.
	Interval time.Duration

	Logger *log.Logger
}

func (o *Options) applyDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Interval <= 0 {
		o.Interval = force.DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ViewState is the aggregate owning all state of one view.
type ViewState struct {
	mu   sync.Mutex
	opts Options
	log  *log.Logger

	sess   *session.Session
	ds     *network.Dataset
	fields *fields.Set

	vp         *viewport.Viewport
	filters    []filter.Filter
	appearance appearance.Appearance
	config     config.View
	layout     *layout.Coordinator
	snaps      *snapshot.Manager

	// persistMu serialises snapshot writes to the store, which run without
	// mu. edits counts state changes so a save can tell whether the view
	// moved on while it was being stored.
	persistMu sync.Mutex
	edits     uint64

	fres filter.Result
	vres visibility.Result

	bus     events.Bus
	pending []events.Event

	loop    force.Loop
	runCtx  context.Context
	running bool
	runInfo runInfo

	closed bool
}

type runInfo struct {
	start time.Time
	ticks int
}

// New builds the view of sess with snapshot idx applied, or the session's
// defaults when idx is [snapshot.None]. Fields are classified once here.
func New(sess *session.Session, idx int, opts Options) (*ViewState, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	ds := sess.Dataset()
	v := &ViewState{
		opts:   opts,
		log:    opts.Logger,
		sess:   sess,
		ds:     ds,
		fields: opts.Classifier.ClassifySet(ds),
		snaps:  snapshot.NewManager(sess.ID, sess.Snapshots, opts.Store),
	}
	v.config = sess.ViewConfig()
	v.vp = viewport.New(v.config.Margin)
	v.vp.SetViewBox(opts.Width, opts.Height)

	if err := v.applySnapshot(idx); err != nil {
		return nil, err
	}
	v.pending = nil

	v.log.Debug("view created",
		"session", sess.Name,
		"nodes", ds.NodeCount(),
		"edges", ds.EdgeCount(),
		"dropped_edges", ds.Dropped,
		"fields", v.fields.Len(),
		"snapshot", idx)
	return v, nil
}

// =============================================================================
// Event plumbing
// =============================================================================

// emit queues an event; a pending event of the same kind is replaced.
// Must be called with mu held.
func (v *ViewState) emit(kind events.Kind, payload any) {
	for i := range v.pending {
		if v.pending[i].Kind == kind {
			v.pending[i].Payload = payload
			return
		}
	}
	v.pending = append(v.pending, events.Event{Kind: kind, Payload: payload})
}

// update runs fn under the lock and publishes the events it raised.
func (v *ViewState) update(fn func() error) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	if v.pending != nil {
		v.emit(events.HeaderChanged, v.headerLocked())
	}
	evs := v.pending
	v.pending = nil
	v.mu.Unlock()

	for _, e := range evs {
		v.bus.Publish(e)
	}
	return err
}

// Subscribe registers fn for events of kind.
func (v *ViewState) Subscribe(kind events.Kind, fn events.Handler) events.Unsubscribe {
	return v.bus.Subscribe(kind, fn)
}

// On registers fn for events of kind under name. A later registration with
// the same kind and name replaces it.
func (v *ViewState) On(kind events.Kind, name string, fn events.Handler) events.Unsubscribe {
	return v.bus.Set(kind, name, fn)
}

// =============================================================================
// Internal recomputation (mu held)
// =============================================================================

func (v *ViewState) refilter() {
	start := time.Now()
	v.fres = filter.Apply(v.ds, v.fields, v.filters)
	v.layout.SetGraph(v.fres.Nodes, v.fres.Edges)
	observability.View().OnFilter(len(v.filters), len(v.fres.Nodes), len(v.fres.Edges), time.Since(start))
	if v.fres.Skipped > 0 {
		v.log.Debug("inert filters skipped", "count", v.fres.Skipped)
	}
	v.emit(events.FilterChanged, nil)
	v.recull()
}

func (v *ViewState) recull() {
	v.vres = visibility.Cull(v.fres.Nodes, v.fres.Edges, v.vp.FocusArea(), v.config.Policy())
	observability.View().OnCull(len(v.vres.Nodes), len(v.vres.Edges), v.vres.EdgesSuppressed)
	v.emit(events.VisibilityChanged, nil)
}

func (v *ViewState) markDirty() {
	v.edits++
	if v.snaps.MarkDirty() {
		v.emit(events.DirtyChanged, true)
	}
}

func (v *ViewState) viewCenter() viewport.Point {
	return v.vp.ToData(v.vp.ViewBox().Center())
}

// =============================================================================
// Accessors
// =============================================================================

// Header summarises the view for status lines.
type Header struct {
	SessionID     string
	SessionName   string
	Snapshot      int
	SnapshotName  string
	Dirty         bool
	Layout        layout.State
	Running       bool
	Nodes         int
	Edges         int
	DroppedEdges  int
	FilteredNodes int
	FilteredEdges int
	VisibleNodes  int
	VisibleEdges  int
	Filters       []string
	Selected      int
}

func (v *ViewState) headerLocked() Header {
	descs := make([]string, len(v.filters))
	for i, f := range v.filters {
		descs[i] = f.Describe()
	}
	sel := 0
	for _, n := range v.ds.Nodes {
		if n.Selected {
			sel++
		}
	}
	return Header{
		SessionID:     v.sess.ID,
		SessionName:   v.sess.Name,
		Snapshot:      v.snaps.Active(),
		SnapshotName:  v.snaps.ActiveName(),
		Dirty:         v.snaps.Dirty(),
		Layout:        v.layout.State(),
		Running:       v.layout.Running(),
		Nodes:         v.ds.NodeCount(),
		Edges:         v.ds.EdgeCount(),
		DroppedEdges:  v.ds.Dropped,
		FilteredNodes: len(v.fres.Nodes),
		FilteredEdges: len(v.fres.Edges),
		VisibleNodes:  len(v.vres.Nodes),
		VisibleEdges:  len(v.vres.Edges),
		Filters:       descs,
		Selected:      sel,
	}
}

// Header returns the current summary.
func (v *ViewState) Header() Header {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.headerLocked()
}

// Frame is a consistent picture of the view for renderers. Node and edge
// pointers are shared with the view; read them only inside [ViewState.Read].
type Frame struct {
	Dataset    *network.Dataset
	Fields     *fields.Set
	Nodes      []*network.Node
	Edges      []*network.Edge
	ShowImages bool
	Suppressed bool
	Transform  viewport.Transform
	ViewBox    viewport.Rect
	FocusArea  viewport.Rect
	Appearance appearance.Appearance
	Config     config.View
}

// Read calls fn with the visible frame while holding the view lock. fn must
// not call other ViewState methods.
func (v *ViewState) Read(fn func(Frame)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(Frame{
		Dataset:    v.ds,
		Fields:     v.fields,
		Nodes:      v.vres.Nodes,
		Edges:      v.vres.Edges,
		ShowImages: v.vres.ShowImages,
		Suppressed: v.vres.EdgesSuppressed,
		Transform:  v.vp.Transform(),
		ViewBox:    v.vp.ViewBox(),
		FocusArea:  v.vp.FocusArea(),
		Appearance: v.appearance,
		Config:     v.config,
	})
}

// ReadFiltered is like Read but hands out the filtered rather than the
// visible nodes and edges, for exports that ignore the viewport.
func (v *ViewState) ReadFiltered(fn func(Frame)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(Frame{
		Dataset:    v.ds,
		Fields:     v.fields,
		Nodes:      v.fres.Nodes,
		Edges:      v.fres.Edges,
		ShowImages: true,
		Transform:  v.vp.Transform(),
		ViewBox:    v.vp.ViewBox(),
		FocusArea:  v.vp.FocusArea(),
		Appearance: v.appearance,
		Config:     v.config,
	})
}

func indices[T any](items []T, index func(T) int) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = index(it)
	}
	return out
}

// FNodes returns the indices of the filtered nodes.
func (v *ViewState) FNodes() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return indices(v.fres.Nodes, func(n *network.Node) int { return n.Index })
}

// FEdges returns the indices of the filtered edges.
func (v *ViewState) FEdges() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return indices(v.fres.Edges, func(e *network.Edge) int { return e.Index })
}

// VNodes returns the indices of the visible nodes.
func (v *ViewState) VNodes() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return indices(v.vres.Nodes, func(n *network.Node) int { return n.Index })
}

// VEdges returns the indices of the visible edges.
func (v *ViewState) VEdges() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return indices(v.vres.Edges, func(e *network.Edge) int { return e.Index })
}

// NodePosition returns the coordinates and pins of node i.
func (v *ViewState) NodePosition(i int) (network.Body, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.ds.Node(i)
	if n == nil {
		return network.Body{}, false
	}
	b := n.Body
	if b.FX != nil {
		fx := *b.FX
		b.FX = &fx
	}
	if b.FY != nil {
		fy := *b.FY
		b.FY = &fy
	}
	return b, true
}

// Fields returns the classified fields.
func (v *ViewState) Fields() *fields.Set { return v.fields }

// Filters returns a copy of the filter list.
func (v *ViewState) Filters() []filter.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return filter.CloneAll(v.filters)
}

// Appearance returns a copy of the appearance.
func (v *ViewState) Appearance() appearance.Appearance {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.appearance.Clone()
}

// Config returns the view configuration.
func (v *ViewState) Config() config.View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.config
}

// Transform returns the viewport transform.
func (v *ViewState) Transform() viewport.Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.Transform()
}

// FocusArea returns the margin-expanded data-space rectangle on screen.
func (v *ViewState) FocusArea() viewport.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.FocusArea()
}

// ToData converts a screen point to data space.
func (v *ViewState) ToData(p viewport.Point) viewport.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.ToData(p)
}

// Dirty reports whether the view has unsaved edits.
func (v *ViewState) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snaps.Dirty()
}

// ActiveSnapshot returns the index of the active snapshot or [snapshot.None].
func (v *ViewState) ActiveSnapshot() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snaps.Active()
}

// Snapshots returns the snapshot names in order.
func (v *ViewState) Snapshots() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snaps.Names()
}

// LayoutState returns the layout state.
func (v *ViewState) LayoutState() layout.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.State()
}

// Session returns the session the view was built from.
func (v *ViewState) Session() *session.Session { return v.sess }
