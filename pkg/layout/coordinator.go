// Package layout coordinates the force simulation with user interaction.
//
// A [Coordinator] runs a [force.Simulation] over the filtered nodes and edges
// and exposes the two layout states of the view:
//
//   - Active: pins are cleared and each tick moves every free node.
//   - Pinned: every node is pinned at its position and the simulation is
//     stopped at zero energy.
//
// [Coordinator.Stick] freezes an active layout, [Coordinator.Relax] resumes it
// at low energy, [Coordinator.Restart] at full energy ("perturb") and
// [Coordinator.ResetCoords] forgets all positions and starts over. Dragging
// pins the dragged node to the pointer for the duration of the gesture; the
// pin is released on drag end only when the layout is active, so a pinned
// layout stays pinned.
//
// The simulation sees nodes only through their [network.Body]; it never
// touches data fields or selection state.
package layout

import (
	"github.com/matzehuels/netview/pkg/force"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/viewport"
)

// RelaxAlpha is the energy a relaxed or dragged layout resumes at.
const RelaxAlpha = 0.3

// Force names registered on the simulation.
const (
	forceLink    = "link"
	forceCharge  = "charge"
	forceCollide = "collide"
	forceX       = "x"
	forceY       = "y"
)

// State is the layout state.
type State int

const (
	Active State = iota
	Pinned
)

func (s State) String() string {
	if s == Pinned {
		return "pinned"
	}
	return "active"
}

// Bodies adapts nodes to the simulation: it exposes only their physical state.
func Bodies(nodes []*network.Node) []*network.Body {
	out := make([]*network.Body, len(nodes))
	for i, n := range nodes {
		out[i] = &n.Body
	}
	return out
}

// Coordinator owns the simulation for one view. It is not safe for
// concurrent use; the view state serialises access.
type Coordinator struct {
	profile Profile
	center  viewport.Point

	nodes    []*network.Node
	edges    []*network.Edge
	sim      *force.Simulation
	state    State
	dragging map[int]bool

	bounds    viewport.Rect
	hasBounds bool
}

// New creates an active coordinator with no graph.
func New(p Profile) *Coordinator {
	c := &Coordinator{
		profile:  p,
		sim:      force.New(nil),
		dragging: make(map[int]bool),
	}
	c.configure()
	return c
}

// Profile returns the active profile.
func (c *Coordinator) Profile() Profile { return c.profile }

// SetProfile replaces the forces. Alpha and state are unchanged.
func (c *Coordinator) SetProfile(p Profile) {
	c.profile = p
	c.configure()
}

// SetCenter moves the point the centering forces pull toward.
func (c *Coordinator) SetCenter(p viewport.Point) {
	c.center = p
	if f, ok := c.sim.Force(forceX); ok {
		f.(*force.X).Target = p.X
	}
	if f, ok := c.sim.Force(forceY); ok {
		f.(*force.Y).Target = p.Y
	}
}

// Center returns the point the centering forces pull toward.
func (c *Coordinator) Center() viewport.Point { return c.center }

// SetGraph re-seeds the simulation with the filtered nodes and edges.
// Edges with an endpoint outside nodes are ignored. Every node takes on the
// layout state: pins are cleared in an active layout and set in a pinned
// one, so nodes returning from outside the filter match the rest. An active
// layout is reheated to at least [RelaxAlpha] so the new graph settles.
func (c *Coordinator) SetGraph(nodes []*network.Node, edges []*network.Edge) {
	c.nodes, c.edges = nodes, edges
	for i := range c.dragging {
		delete(c.dragging, i)
	}
	c.sim.SetBodies(Bodies(nodes))
	c.configure()
	switch c.state {
	case Active:
		for _, n := range nodes {
			n.Unpin()
		}
		if c.sim.Alpha() < RelaxAlpha {
			c.sim.SetAlpha(RelaxAlpha)
		}
	case Pinned:
		for _, n := range nodes {
			n.Pin(n.X, n.Y)
			n.VX, n.VY = 0, 0
		}
	}
	c.updateBounds()
}

// Nodes returns the simulated nodes.
func (c *Coordinator) Nodes() []*network.Node { return c.nodes }

func (c *Coordinator) configure() {
	p := c.profile

	local := make(map[int]int, len(c.nodes))
	for i, n := range c.nodes {
		local[n.Index] = i
	}
	links := make([]force.Edge, 0, len(c.edges))
	for _, e := range c.edges {
		s, okS := local[e.SourceIndex]
		t, okT := local[e.TargetIndex]
		if okS && okT {
			links = append(links, force.Edge{Source: s, Target: t})
		}
	}

	link := force.NewLink(links)
	link.Distance = p.LinkDistance
	link.Strength = p.LinkStrength
	c.sim.AddForce(forceLink, link)

	charge := force.NewManyBody()
	charge.Strength = p.Charge
	charge.DistanceMin = p.ChargeDistanceMin
	charge.DistanceMax = p.distanceMax()
	c.sim.AddForce(forceCharge, charge)

	if p.CollideRadius > 0 {
		c.sim.AddForce(forceCollide, force.NewCollide(p.CollideRadius))
	} else {
		c.sim.RemoveForce(forceCollide)
	}

	fx, fy := force.NewX(c.center.X), force.NewY(c.center.Y)
	fx.Strength, fy.Strength = p.CenterStrength, p.CenterStrength
	c.sim.AddForce(forceX, fx)
	c.sim.AddForce(forceY, fy)
}

// State returns the layout state.
func (c *Coordinator) State() State { return c.state }

// Alpha returns the simulation energy.
func (c *Coordinator) Alpha() float64 { return c.sim.Alpha() }

// Dragging reports whether a drag gesture is in progress.
func (c *Coordinator) Dragging() bool { return len(c.dragging) > 0 }

// Running reports whether ticking would move anything.
func (c *Coordinator) Running() bool {
	return (c.state == Active || c.Dragging()) && !c.sim.Ended()
}

// Stick pins every node at its position and stops the simulation.
func (c *Coordinator) Stick() {
	for _, n := range c.nodes {
		n.Pin(n.X, n.Y)
		n.VX, n.VY = 0, 0
	}
	c.sim.SetAlphaTarget(0)
	c.sim.SetAlpha(0)
	c.state = Pinned
	c.updateBounds()
}

// Relax clears all pins and resumes the simulation at [RelaxAlpha].
func (c *Coordinator) Relax() { c.activate(RelaxAlpha) }

// Restart clears all pins and resumes the simulation at full energy.
func (c *Coordinator) Restart() { c.activate(1) }

// ResetCoords forgets every position, velocity and pin, re-seeds the nodes
// and restarts at full energy.
func (c *Coordinator) ResetCoords() {
	for _, n := range c.nodes {
		n.ClearPosition()
	}
	c.sim.SetBodies(Bodies(c.nodes))
	c.activate(1)
}

func (c *Coordinator) activate(alpha float64) {
	for _, n := range c.nodes {
		if !c.dragging[n.Index] {
			n.Unpin()
		}
	}
	c.sim.SetAlpha(alpha)
	c.state = Active
}

// Tick advances an active layout by one step and reports whether it has
// ended. Ending recomputes [Coordinator.Bounds].
func (c *Coordinator) Tick() (ended bool) {
	if !c.Running() {
		return true
	}
	if c.sim.Step() {
		c.updateBounds()
		return true
	}
	return false
}

// Converge ticks until the layout ends or maxTicks is reached
// (maxTicks <= 0 means no limit) and returns the ticks run.
func (c *Coordinator) Converge(maxTicks int) int {
	n := 0
	for c.Running() && (maxTicks <= 0 || n < maxTicks) {
		c.Tick()
		n++
	}
	c.updateBounds()
	return n
}

// DragStart pins node i at its position and warms the simulation.
// It returns false if i is not simulated.
func (c *Coordinator) DragStart(i int) bool {
	n := c.find(i)
	if n == nil {
		return false
	}
	c.dragging[i] = true
	n.Pin(n.X, n.Y)
	c.sim.SetAlphaTarget(RelaxAlpha)
	if c.sim.Alpha() < RelaxAlpha {
		c.sim.SetAlpha(RelaxAlpha)
	}
	return true
}

// DragMove moves the dragged node i to (x, y).
func (c *Coordinator) DragMove(i int, x, y float64) bool {
	n := c.find(i)
	if n == nil || !c.dragging[i] {
		return false
	}
	n.Place(x, y)
	n.Pin(x, y)
	return true
}

// DragEnd finishes the gesture on node i. The pin is released only when the
// layout is active.
func (c *Coordinator) DragEnd(i int) bool {
	n := c.find(i)
	if n == nil || !c.dragging[i] {
		return false
	}
	delete(c.dragging, i)
	if !c.Dragging() {
		c.sim.SetAlphaTarget(0)
	}
	if c.state == Active {
		n.Unpin()
	} else {
		n.VX, n.VY = 0, 0
	}
	c.updateBounds()
	return true
}

func (c *Coordinator) find(i int) *network.Node {
	for _, n := range c.nodes {
		if n.Index == i {
			return n
		}
	}
	return nil
}

// Bounds returns the bounding box of the simulated nodes. It is recomputed
// when the layout ends, sticks or finishes a drag, and on every call while
// the layout is running.
func (c *Coordinator) Bounds() (viewport.Rect, bool) {
	if c.Running() {
		c.updateBounds()
	}
	return c.bounds, c.hasBounds
}

func (c *Coordinator) updateBounds() {
	pts := make([]viewport.Point, 0, len(c.nodes))
	for _, n := range c.nodes {
		if x, y, ok := n.Position(); ok {
			pts = append(pts, viewport.Point{X: x, Y: y})
		}
	}
	c.bounds, c.hasBounds = viewport.Bounds(pts)
}
