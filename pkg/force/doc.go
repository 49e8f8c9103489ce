// Package force implements a velocity Verlet force simulation over point
// bodies, following the conventions of d3-force.
//
// # Overview
//
// A [Simulation] owns a slice of [network.Body] pointers and an ordered set of
// named [Force] values. Each [Simulation.Tick] decays alpha toward the alpha
// target, lets every force adjust body velocities in proportion to alpha,
// then integrates: velocities are damped by the velocity decay and added to
// positions. Pinned bodies (FX/FY set) are snapped to their pin with zero
// velocity. The simulation has ended once alpha drops below alpha min.
//
// Bodies that have never been placed are seeded on a phyllotaxis spiral so
// that a fresh layout starts evenly spread instead of stacked on the origin.
//
// # Forces
//
//   - [Link]: spring between linked bodies, with degree-based strength and bias
//   - [ManyBody]: pairwise charge with distance clamps
//   - [Center]: translates the centroid onto a point
//   - [X], [Y]: weak pull toward a coordinate on one axis
//   - [Collide]: keeps bodies at least a radius apart
//
// # Driving the simulation
//
// Callers either step synchronously ([Simulation.Step], [Simulation.Converge])
// or hand a step function to a [Loop], which calls it from a ticker goroutine
// and guarantees that a stopped run never calls back.
package force
