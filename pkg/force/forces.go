package force

import (
	"math"
	"math/rand"

	"github.com/matzehuels/netview/pkg/network"
)

// =============================================================================
// Link
// =============================================================================

// Edge connects two bodies by their position in the simulation's body slice.
type Edge struct {
	Source, Target int
}

// Link pulls linked bodies toward a target distance.
//
// A zero Strength selects the d3 default 1/min(degree(source), degree(target)),
// which weakens springs on hubs. The correction is split between the
// endpoints in proportion to their degree.
type Link struct {
	Edges      []Edge
	Distance   float64
	Strength   float64
	Iterations int

	bodies    []*network.Body
	rnd       *rand.Rand
	strengths []float64
	bias      []float64
}

// NewLink returns a link force with d3 defaults (distance 30, one iteration).
func NewLink(edges []Edge) *Link {
	return &Link{Edges: edges, Distance: 30, Iterations: 1}
}

func (l *Link) Init(bodies []*network.Body, rnd *rand.Rand) {
	l.bodies, l.rnd = bodies, rnd

	count := make([]int, len(bodies))
	valid := l.Edges[:0:0]
	for _, e := range l.Edges {
		if e.Source < 0 || e.Source >= len(bodies) || e.Target < 0 || e.Target >= len(bodies) {
			continue
		}
		valid = append(valid, e)
		count[e.Source]++
		count[e.Target]++
	}
	l.Edges = valid

	l.strengths = make([]float64, len(l.Edges))
	l.bias = make([]float64, len(l.Edges))
	for i, e := range l.Edges {
		cs, ct := count[e.Source], count[e.Target]
		l.bias[i] = float64(cs) / float64(cs+ct)
		if l.Strength != 0 {
			l.strengths[i] = l.Strength
		} else {
			l.strengths[i] = 1 / float64(min(cs, ct))
		}
	}
}

func (l *Link) Apply(alpha float64) {
	iterations := max(l.Iterations, 1)
	for range iterations {
		for i, e := range l.Edges {
			src, dst := l.bodies[e.Source], l.bodies[e.Target]
			x := dst.X + dst.VX - src.X - src.VX
			y := dst.Y + dst.VY - src.Y - src.VY
			if x == 0 {
				x = jiggle(l.rnd)
			}
			if y == 0 {
				y = jiggle(l.rnd)
			}
			d := math.Hypot(x, y)
			d = (d - l.Distance) / d * alpha * l.strengths[i]
			x, y = x*d, y*d

			b := l.bias[i]
			dst.VX -= x * b
			dst.VY -= y * b
			src.VX += x * (1 - b)
			src.VY += y * (1 - b)
		}
	}
}

// =============================================================================
// ManyBody
// =============================================================================

// ManyBody applies a pairwise charge: negative Strength repels.
// Interactions beyond DistanceMax are ignored and distances below DistanceMin
// are clamped, which bounds the force between near-coincident bodies.
type ManyBody struct {
	Strength    float64
	DistanceMin float64
	DistanceMax float64

	bodies []*network.Body
	rnd    *rand.Rand
}

// NewManyBody returns a many-body force with d3 defaults
// (strength -30, distance min 1, no distance max).
func NewManyBody() *ManyBody {
	return &ManyBody{Strength: -30, DistanceMin: 1, DistanceMax: math.Inf(1)}
}

func (m *ManyBody) Init(bodies []*network.Body, rnd *rand.Rand) {
	m.bodies, m.rnd = bodies, rnd
}

func (m *ManyBody) Apply(alpha float64) {
	min2 := m.DistanceMin * m.DistanceMin
	max2 := m.DistanceMax * m.DistanceMax
	for i, a := range m.bodies {
		for j, b := range m.bodies {
			if i == j {
				continue
			}
			x, y := b.X-a.X, b.Y-a.Y
			l := x*x + y*y
			if l >= max2 {
				continue
			}
			if x == 0 {
				x = jiggle(m.rnd)
				l += x * x
			}
			if y == 0 {
				y = jiggle(m.rnd)
				l += y * y
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := m.Strength * alpha / l
			a.VX += x * w
			a.VY += y * w
		}
	}
}

// =============================================================================
// Center
// =============================================================================

// Center translates all bodies so that their centroid is at (X, Y).
// It moves positions directly and does not depend on alpha.
type Center struct {
	X, Y     float64
	Strength float64

	bodies []*network.Body
}

// NewCenter returns a centering force at (x, y) with strength 1.
func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

func (c *Center) Init(bodies []*network.Body, _ *rand.Rand) { c.bodies = bodies }

func (c *Center) Apply(float64) {
	if len(c.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range c.bodies {
		sx += b.X
		sy += b.Y
	}
	n := float64(len(c.bodies))
	sx = (sx/n - c.X) * c.Strength
	sy = (sy/n - c.Y) * c.Strength
	for _, b := range c.bodies {
		b.X -= sx
		b.Y -= sy
	}
}

// =============================================================================
// X / Y
// =============================================================================

// X pulls every body toward the vertical line at Target.
type X struct {
	Target   float64
	Strength float64

	bodies []*network.Body
}

// NewX returns a positioning force with d3's default strength 0.1.
func NewX(target float64) *X { return &X{Target: target, Strength: 0.1} }

func (f *X) Init(bodies []*network.Body, _ *rand.Rand) { f.bodies = bodies }

func (f *X) Apply(alpha float64) {
	for _, b := range f.bodies {
		b.VX += (f.Target - b.X) * f.Strength * alpha
	}
}

// Y pulls every body toward the horizontal line at Target.
type Y struct {
	Target   float64
	Strength float64

	bodies []*network.Body
}

// NewY returns a positioning force with d3's default strength 0.1.
func NewY(target float64) *Y { return &Y{Target: target, Strength: 0.1} }

func (f *Y) Init(bodies []*network.Body, _ *rand.Rand) { f.bodies = bodies }

func (f *Y) Apply(alpha float64) {
	for _, b := range f.bodies {
		b.VY += (f.Target - b.Y) * f.Strength * alpha
	}
}

// =============================================================================
// Collide
// =============================================================================

// Collide treats bodies as circles of Radius and pushes overlapping pairs
// apart. Like d3's collide it ignores alpha.
type Collide struct {
	Radius     float64
	Strength   float64
	Iterations int

	bodies []*network.Body
	rnd    *rand.Rand
}

// NewCollide returns a collision force with strength 1 and one iteration.
func NewCollide(radius float64) *Collide {
	return &Collide{Radius: radius, Strength: 1, Iterations: 1}
}

func (c *Collide) Init(bodies []*network.Body, rnd *rand.Rand) {
	c.bodies, c.rnd = bodies, rnd
}

func (c *Collide) Apply(float64) {
	if c.Radius <= 0 {
		return
	}
	r := 2 * c.Radius
	r2 := r * r
	iterations := max(c.Iterations, 1)
	for range iterations {
		for i, a := range c.bodies {
			for _, b := range c.bodies[i+1:] {
				x := a.X + a.VX - b.X - b.VX
				y := a.Y + a.VY - b.Y - b.VY
				l := x*x + y*y
				if l >= r2 {
					continue
				}
				if x == 0 {
					x = jiggle(c.rnd)
					l += x * x
				}
				if y == 0 {
					y = jiggle(c.rnd)
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * c.Strength
				x, y = x*l, y*l
				// Equal radii split the correction evenly.
				a.VX += x * 0.5
				a.VY += y * 0.5
				b.VX -= x * 0.5
				b.VY -= y * 0.5
			}
		}
	}
}
