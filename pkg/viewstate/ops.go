package viewstate

import (
	"context"
	"errors"
	"slices"

	"github.com/matzehuels/netview/pkg/appearance"
	"github.com/matzehuels/netview/pkg/config"
	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/filter"
	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewport"
)

// ErrClosed is returned by mutations after [ViewState.Close].
var ErrClosed = errors.New("view is closed")

// =============================================================================
// Viewport
// =============================================================================

// SetViewBox resizes the hosting frame. Resizing is not a user edit and does
// not set the dirty flag.
func (v *ViewState) SetViewBox(width, height float64) error {
	return v.update(func() error {
		v.vp.SetViewBox(width, height)
		v.layout.SetCenter(v.viewCenter())
		v.emit(events.TransformChanged, v.vp.Transform())
		v.recull()
		return nil
	})
}

func (v *ViewState) transformed() {
	v.emit(events.TransformChanged, v.vp.Transform())
	v.recull()
	v.markDirty()
}

// SetTransform replaces the pan/zoom transform.
func (v *ViewState) SetTransform(t viewport.Transform) error {
	return v.update(func() error {
		if !t.Valid() {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "invalid transform %+v", t)
		}
		v.vp.SetTransform(t.X, t.Y, t.K)
		v.transformed()
		return nil
	})
}

// PanBy translates the view by (dx, dy) pixels.
func (v *ViewState) PanBy(dx, dy float64) error {
	return v.update(func() error {
		v.vp.PanBy(dx, dy)
		v.transformed()
		return nil
	})
}

// ZoomAt scales the view by factor around the screen point p.
func (v *ViewState) ZoomAt(p viewport.Point, factor float64) error {
	return v.update(func() error {
		if factor <= 0 {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "zoom factor must be positive, got %v", factor)
		}
		v.vp.ZoomAt(p, factor)
		v.transformed()
		return nil
	})
}

// Fit zooms so that the filtered nodes fill the view box. A view without
// placed nodes is left unchanged.
func (v *ViewState) Fit() error {
	return v.update(func() error {
		b, ok := v.layout.Bounds()
		if !ok {
			return nil
		}
		v.vp.Fit(b)
		v.transformed()
		return nil
	})
}

// =============================================================================
// Filters
// =============================================================================

func (v *ViewState) filtersChanged() {
	v.refilter()
	v.markDirty()
	v.kick()
}

// SetFilters replaces the filter list. Filters on unknown fields are kept
// but have no effect.
func (v *ViewState) SetFilters(fs []filter.Filter) error {
	return v.update(func() error {
		v.filters = filter.CloneAll(fs)
		v.filtersChanged()
		return nil
	})
}

// AddFilter validates f and appends it to the filter list.
func (v *ViewState) AddFilter(f filter.Filter) error {
	return v.update(func() error {
		if err := filter.Validate(f, v.fields); err != nil {
			return err
		}
		v.filters = append(v.filters, f.Clone())
		v.filtersChanged()
		return nil
	})
}

// RemoveFilter removes the filter at index i.
func (v *ViewState) RemoveFilter(i int) error {
	return v.update(func() error {
		if i < 0 || i >= len(v.filters) {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "filter %d does not exist", i)
		}
		v.filters = slices.Delete(slices.Clone(v.filters), i, i+1)
		v.filtersChanged()
		return nil
	})
}

// ClearFilters removes every filter.
func (v *ViewState) ClearFilters() error {
	return v.update(func() error {
		if len(v.filters) == 0 {
			return nil
		}
		v.filters = nil
		v.filtersChanged()
		return nil
	})
}

// =============================================================================
// Appearance and configuration
// =============================================================================

// SetAppearance replaces the encoding of one channel.
func (v *ViewState) SetAppearance(ch appearance.Channel, enc appearance.Encoding) error {
	return v.update(func() error {
		if !ch.Valid() {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "unknown channel %q", ch)
		}
		next := v.appearance.Clone()
		next[ch] = enc.Clone()
		next.EnsureDomains(v.fields)
		v.appearance = next
		v.emit(events.AppearanceChanged, ch)
		v.markDirty()
		return nil
	})
}

// BindField binds a channel to a field, inferring the domain when the field
// changes. An empty field unbinds the channel.
func (v *ViewState) BindField(ch appearance.Channel, field string) error {
	return v.update(func() error {
		next := v.appearance.Clone()
		if err := next.Bind(ch, field, v.fields); err != nil {
			return err
		}
		v.appearance = next
		v.emit(events.AppearanceChanged, ch)
		v.markDirty()
		return nil
	})
}

// SetConfig replaces the view configuration. Invalid values are replaced by
// defaults. A profile change swaps the layout forces without restarting.
func (v *ViewState) SetConfig(c config.View) error {
	return v.update(func() error {
		c = c.Normalize()
		if c == v.config {
			return nil
		}
		prev := v.config
		v.config = c
		if c.LayoutProfile != prev.LayoutProfile {
			v.layout.SetProfile(c.Profile())
		}
		if c.Margin != prev.Margin {
			v.vp.SetMargin(c.Margin)
			v.emit(events.TransformChanged, v.vp.Transform())
		}
		v.emit(events.ConfigChanged, c)
		v.recull()
		v.markDirty()
		return nil
	})
}

// =============================================================================
// Selection
// =============================================================================

// Select marks the nodes with the given indices as selected. Selection is
// not part of snapshots and does not set the dirty flag.
func (v *ViewState) Select(indices ...int) error {
	return v.update(func() error {
		for _, i := range indices {
			n := v.ds.Node(i)
			if n == nil {
				return nverrors.New(nverrors.ErrCodeInvalidInput, "node %d does not exist", i)
			}
		}
		changed := false
		for _, i := range indices {
			n := v.ds.Node(i)
			if !n.Selected {
				n.Selected = true
				changed = true
			}
		}
		if changed {
			v.emit(events.SelectionChanged, nil)
		}
		return nil
	})
}

// ClearSelection deselects every node.
func (v *ViewState) ClearSelection() error {
	return v.update(func() error {
		changed := false
		for _, n := range v.ds.Nodes {
			if n.Selected {
				n.Selected = false
				changed = true
			}
		}
		if changed {
			v.emit(events.SelectionChanged, nil)
		}
		return nil
	})
}

// Selected returns the indices of the selected nodes.
func (v *ViewState) Selected() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []int
	for _, n := range v.ds.Nodes {
		if n.Selected {
			out = append(out, n.Index)
		}
	}
	return out
}

// =============================================================================
// Layout
// =============================================================================

func (v *ViewState) layoutChanged() {
	v.recull()
	v.markDirty()
	v.kick()
}

// Stick pins every filtered node where it is and stops the layout.
func (v *ViewState) Stick() error {
	return v.update(func() error {
		v.stopRun(nil)
		v.layout.Stick()
		v.layoutChanged()
		return nil
	})
}

// Relax unpins the layout and resumes it at low energy.
func (v *ViewState) Relax() error {
	return v.update(func() error {
		v.layout.Relax()
		v.layoutChanged()
		return nil
	})
}

// Perturb unpins the layout and restarts it at full energy.
func (v *ViewState) Perturb() error {
	return v.update(func() error {
		v.layout.Restart()
		v.layoutChanged()
		return nil
	})
}

// ResetLayout forgets all positions of the filtered nodes and lays them out
// from scratch.
func (v *ViewState) ResetLayout() error {
	return v.update(func() error {
		v.layout.ResetCoords()
		v.layoutChanged()
		return nil
	})
}

// DragStart begins dragging node i.
func (v *ViewState) DragStart(i int) error {
	return v.update(func() error {
		if !v.layout.DragStart(i) {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "node %d is not in the layout", i)
		}
		v.kick()
		return nil
	})
}

// DragMove moves the dragged node i to the data point (x, y).
func (v *ViewState) DragMove(i int, x, y float64) error {
	return v.update(func() error {
		if !v.layout.DragMove(i, x, y) {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "node %d is not being dragged", i)
		}
		v.layoutChanged()
		return nil
	})
}

// DragEnd finishes dragging node i. In a pinned layout the node stays where
// it was dropped.
func (v *ViewState) DragEnd(i int) error {
	return v.update(func() error {
		if !v.layout.DragEnd(i) {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "node %d is not being dragged", i)
		}
		v.layoutChanged()
		return nil
	})
}

// =============================================================================
// Snapshots
// =============================================================================

// applySnapshot replaces the whole view state with snapshot idx, or with the
// session defaults for [snapshot.None]. Must be called with mu held.
func (v *ViewState) applySnapshot(idx int) error {
	snap, ok, err := v.snaps.Select(idx)
	if err != nil {
		return err
	}
	v.stopRun(context.Canceled)
	v.edits++

	if ok {
		v.filters = snap.Filters
		v.config = v.sess.ViewConfig()
		if !snap.Config.IsZero() {
			v.config = snap.Config.Normalize()
		}
		if snap.Appearance != nil {
			v.appearance = appearance.Default().Merge(snap.Appearance)
		} else {
			v.appearance = v.sess.DefaultAppearance()
		}
		t := snap.Transform
		if !t.Valid() {
			t = viewport.Identity
		}
		v.vp.SetMargin(v.config.Margin)
		v.vp.SetTransform(t.X, t.Y, t.K)
		snap.Restore(v.ds.Nodes)
	} else {
		v.filters = nil
		v.config = v.sess.ViewConfig()
		v.appearance = v.sess.DefaultAppearance()
		v.vp.SetMargin(v.config.Margin)
		v.vp.SetTransform(viewport.Identity.X, viewport.Identity.Y, viewport.Identity.K)
		for _, n := range v.ds.Nodes {
			n.ClearPosition()
		}
	}
	v.appearance.EnsureDomains(v.fields)

	v.layout = layout.New(v.config.Profile())
	v.layout.SetCenter(v.viewCenter())
	v.refilter()
	if ok {
		v.layout.Stick()
	} else {
		v.layout.Restart()
	}
	v.recull()

	v.emit(events.TransformChanged, v.vp.Transform())
	v.emit(events.AppearanceChanged, nil)
	v.emit(events.ConfigChanged, v.config)
	v.emit(events.DirtyChanged, false)
	v.emit(events.SnapshotApplied, idx)

	v.log.Debug("snapshot applied", "session", v.sess.Name, "snapshot", v.snaps.ActiveName(), "filters", len(v.filters))
	v.kick()
	return nil
}

// ApplySnapshot replaces the view with snapshot idx, or with the session
// defaults and an active layout for [snapshot.None]. Unsaved edits are lost.
func (v *ViewState) ApplySnapshot(idx int) error {
	return v.update(func() error { return v.applySnapshot(idx) })
}

// Discard drops unsaved edits by re-applying the active snapshot.
func (v *ViewState) Discard() error {
	return v.update(func() error { return v.applySnapshot(v.snaps.Active()) })
}

// Save captures the view as a new snapshot, persists it and makes it active.
// An empty name is replaced by a timestamp. On error the view is unchanged.
// The view stays usable while the store is written; edits made meanwhile
// leave the new snapshot dirty.
func (v *ViewState) Save(ctx context.Context, name string) (int, error) {
	v.persistMu.Lock()
	defer v.persistMu.Unlock()

	var (
		snap  snapshot.Snapshot
		edits uint64
	)
	err := v.update(func() error {
		var err error
		snap, err = v.snaps.Prepare(snapshot.Capture(name, snapshot.State{
			Nodes:      v.ds.Nodes,
			Filters:    v.filters,
			Transform:  v.vp.Transform(),
			Config:     v.config,
			Appearance: v.appearance,
		}))
		edits = v.edits
		return err
	})
	if err != nil {
		return snapshot.None, err
	}

	if err := v.snaps.StoreAppend(ctx, snap); err != nil {
		return snapshot.None, err
	}

	var idx int
	err = v.update(func() error {
		wasDirty := v.snaps.Dirty()
		idx = v.snaps.CommitSave(snap)
		v.sess.Snapshots = append(v.sess.Snapshots, snap.Clone())
		switch {
		case v.edits != edits:
			v.markDirty()
		case wasDirty:
			v.emit(events.DirtyChanged, false)
		}
		v.emit(events.HeaderChanged, nil)
		v.log.Info("snapshot saved", "session", v.sess.Name, "snapshot", snap.Name, "index", idx)
		return nil
	})
	if err != nil {
		return snapshot.None, err
	}
	return idx, nil
}

// Rename renames the active snapshot.
func (v *ViewState) Rename(ctx context.Context, name string) error {
	v.persistMu.Lock()
	defer v.persistMu.Unlock()

	var idx int
	err := v.update(func() error {
		var err error
		idx, err = v.snaps.RenameTarget(name)
		return err
	})
	if err != nil {
		return err
	}

	if err := v.snaps.StoreRename(ctx, idx, name); err != nil {
		return err
	}

	return v.update(func() error {
		v.snaps.CommitRename(idx, name)
		v.sess.Snapshots[idx].Name = name
		v.emit(events.HeaderChanged, nil)
		return nil
	})
}

// DeleteSnapshot deletes the active snapshot. The view keeps its current
// state, which is no longer saved anywhere and therefore dirty.
func (v *ViewState) DeleteSnapshot(ctx context.Context) error {
	v.persistMu.Lock()
	defer v.persistMu.Unlock()

	var idx int
	err := v.update(func() error {
		idx = v.snaps.Active()
		if idx == snapshot.None {
			return snapshot.ErrNoActive
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := v.snaps.StoreDelete(ctx, idx); err != nil {
		return err
	}

	return v.update(func() error {
		wasDirty := v.snaps.Dirty()
		v.snaps.CommitDelete(idx)
		v.sess.Snapshots = slices.Delete(v.sess.Snapshots, idx, idx+1)
		if v.snaps.Dirty() != wasDirty {
			v.emit(events.DirtyChanged, true)
		}
		v.emit(events.HeaderChanged, nil)
		v.log.Info("snapshot deleted", "session", v.sess.Name, "index", idx)
		return nil
	})
}

// Close stops the layout and rejects further mutations. Accessors keep
// working.
func (v *ViewState) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.stopRun(context.Canceled)
	v.closed = true
	v.runCtx = nil
	return nil
}
