package force

import (
	"math"
	"math/rand"

	"github.com/matzehuels/netview/pkg/network"
)

// Defaults match d3-force.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4

	initialRadius = 10
)

var (
	// DefaultAlphaDecay brings alpha from 1 to alpha min in 300 ticks.
	DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

	initialAngle = math.Pi * (3 - math.Sqrt(5))
)

// Force adjusts body velocities once per tick.
type Force interface {
	// Init is called whenever the simulation's bodies change.
	Init(bodies []*network.Body, rnd *rand.Rand)
	// Apply updates velocities (or, for Center, positions) for the given alpha.
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation is a force simulation over a fixed slice of bodies.
// It is not safe for concurrent use.
type Simulation struct {
	bodies []*network.Body
	forces []namedForce
	rnd    *rand.Rand

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
}

// New creates a simulation at alpha 1 and seeds unplaced bodies.
func New(bodies []*network.Body) *Simulation {
	s := &Simulation{
		rnd:           rand.New(rand.NewSource(1)),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: DefaultVelocityDecay,
	}
	s.SetBodies(bodies)
	return s
}

// Bodies returns the simulated bodies.
func (s *Simulation) Bodies() []*network.Body { return s.bodies }

// SetBodies replaces the bodies, seeds any unplaced ones and re-initializes
// every force.
func (s *Simulation) SetBodies(bodies []*network.Body) {
	s.bodies = bodies
	s.initBodies()
	for _, f := range s.forces {
		f.force.Init(s.bodies, s.rnd)
	}
}

func (s *Simulation) initBodies() {
	for i, b := range s.bodies {
		if b.FX != nil {
			b.X = *b.FX
		}
		if b.FY != nil {
			b.Y = *b.FY
		}
		if !b.Placed {
			if b.FX == nil || b.FY == nil {
				r := initialRadius * math.Sqrt(0.5+float64(i))
				a := float64(i) * initialAngle
				if b.FX == nil {
					b.X = r * math.Cos(a)
				}
				if b.FY == nil {
					b.Y = r * math.Sin(a)
				}
			}
			b.VX, b.VY = 0, 0
			b.Placed = true
		}
	}
}

// AddForce registers f under name, replacing any force of that name.
func (s *Simulation) AddForce(name string, f Force) {
	f.Init(s.bodies, s.rnd)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name, f})
}

// Force returns the force registered under name.
func (s *Simulation) Force(name string) (Force, bool) {
	for _, f := range s.forces {
		if f.name == name {
			return f.force, true
		}
	}
	return nil, false
}

// RemoveForce unregisters the force of that name.
func (s *Simulation) RemoveForce(name string) {
	for i, f := range s.forces {
		if f.name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current energy, clamped to [0, 1].
func (s *Simulation) SetAlpha(a float64) { s.alpha = clamp(a, 0, 1) }

// AlphaMin returns the energy below which the simulation has ended.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// SetAlphaMin sets the end threshold.
func (s *Simulation) SetAlphaMin(a float64) { s.alphaMin = clamp(a, 0, 1) }

// SetAlphaDecay sets the per-tick decay rate.
func (s *Simulation) SetAlphaDecay(d float64) { s.alphaDecay = clamp(d, 0, 1) }

// SetAlphaTarget sets the energy alpha decays toward.
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = clamp(a, 0, 1) }

// SetVelocityDecay sets the friction applied at integration.
func (s *Simulation) SetVelocityDecay(d float64) { s.velocityDecay = clamp(d, 0, 1) }

// Ended reports whether alpha has dropped below alpha min.
func (s *Simulation) Ended() bool { return s.alpha < s.alphaMin }

// Tick advances the simulation by one iteration.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, f := range s.forces {
		f.force.Apply(s.alpha)
	}

	keep := 1 - s.velocityDecay
	for _, b := range s.bodies {
		if b.FX == nil {
			b.VX *= keep
			b.X += b.VX
		} else {
			b.X, b.VX = *b.FX, 0
		}
		if b.FY == nil {
			b.VY *= keep
			b.Y += b.VY
		} else {
			b.Y, b.VY = *b.FY, 0
		}
	}
}

// Step ticks once and reports whether the simulation has ended.
func (s *Simulation) Step() (ended bool) {
	s.Tick()
	return s.Ended()
}

// Converge ticks until the simulation ends or maxTicks is reached
// (maxTicks <= 0 means no limit) and returns the number of ticks run.
func (s *Simulation) Converge(maxTicks int) int {
	n := 0
	for !s.Ended() && (maxTicks <= 0 || n < maxTicks) {
		s.Tick()
		n++
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// jiggle returns a tiny random offset used to separate coincident bodies.
func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
