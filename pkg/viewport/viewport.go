// Package viewport implements the pan/zoom transform between screen pixels
// and data coordinates.
//
// A [Viewport] owns a [Transform] (translate x, translate y, scale k) and the
// pixel [Rect] of the hosting frame. From both it derives the focus area: the
// data-space rectangle currently on screen, expanded by a margin so that
// nodes just outside the frame do not flicker in and out while panning.
//
// Screen and data coordinates relate by
//
//	screen = data*k + (x, y)
//	data   = (screen - (x, y)) / k
//
// All operations are pure math; degenerate input (k <= 0, NaN, empty
// boundaries) falls back to the previous or default transform instead of
// propagating NaN.
package viewport

import (
	"math"
)

// DefaultMargin is the focus-area margin in data units.
const DefaultMargin = 50.0

// Identity is the transform that maps data coordinates 1:1 onto pixels.
var Identity = Transform{X: 0, Y: 0, K: 1}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is an affine pan/zoom transform. K must be positive.
type Transform struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	K float64 `json:"k" bson:"k"`
}

// Valid reports whether the transform is usable: finite and K > 0.
func (t Transform) Valid() bool {
	return finite(t.X) && finite(t.Y) && finite(t.K) && t.K > 0
}

// Apply maps a data point to screen space.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point to data space.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Width returns Right-Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Contains reports whether p lies strictly inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return r.Left < p.X && p.X < r.Right && r.Top < p.Y && p.Y < r.Bottom
}

// Bounds returns the bounding box of points, or false if there are none.
func Bounds(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{Top: points[0].Y, Left: points[0].X, Bottom: points[0].Y, Right: points[0].X}
	for _, p := range points[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Right = math.Max(r.Right, p.X)
		r.Top = math.Min(r.Top, p.Y)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r, true
}

// =============================================================================
// Viewport
// =============================================================================

// Viewport holds the transform and view box and keeps the focus area in sync
// with them. The zero value is not usable; call [New].
type Viewport struct {
	transform Transform
	viewBox   Rect
	margin    float64
	focus     Rect
}

// New creates a viewport with the identity transform, an empty view box and
// the given margin. A negative margin is replaced by [DefaultMargin].
func New(margin float64) *Viewport {
	if margin < 0 || !finite(margin) {
		margin = DefaultMargin
	}
	v := &Viewport{transform: Identity, margin: margin}
	v.recompute()
	return v
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.transform }

// ViewBox returns the pixel bounds of the hosting frame.
func (v *Viewport) ViewBox() Rect { return v.viewBox }

// Margin returns the focus-area margin in data units.
func (v *Viewport) Margin() float64 { return v.margin }

// FocusArea returns the margin-expanded data-space rectangle on screen.
func (v *Viewport) FocusArea() Rect { return v.focus }

// SetMargin replaces the focus-area margin. Negative or non-finite values
// are ignored.
func (v *Viewport) SetMargin(margin float64) {
	if margin < 0 || !finite(margin) {
		return
	}
	v.margin = margin
	v.recompute()
}

// SetViewBox replaces the pixel bounds with a width×height frame anchored at
// the origin. The transform is left untouched.
func (v *Viewport) SetViewBox(width, height float64) {
	v.viewBox = Rect{Top: 0, Left: 0, Bottom: math.Max(height, 0), Right: math.Max(width, 0)}
	v.recompute()
}

// SetTransform replaces the transform. A non-positive or non-finite scale
// keeps the previous scale; non-finite translations keep the previous ones.
func (v *Viewport) SetTransform(x, y, k float64) {
	next := v.transform
	if finite(x) {
		next.X = x
	}
	if finite(y) {
		next.Y = y
	}
	if finite(k) && k > 0 {
		next.K = k
	}
	v.transform = next
	v.recompute()
}

// ToData converts a screen point to data space.
func (v *Viewport) ToData(p Point) Point { return v.transform.Invert(p) }

// ToScreen converts a data point to screen space.
func (v *Viewport) ToScreen(p Point) Point { return v.transform.Apply(p) }

// PanBy translates the view by (dx, dy) pixels.
func (v *Viewport) PanBy(dx, dy float64) {
	v.SetTransform(v.transform.X+dx, v.transform.Y+dy, v.transform.K)
}

// ZoomAt scales the view by factor while keeping the screen point p fixed.
func (v *Viewport) ZoomAt(p Point, factor float64) {
	if !finite(factor) || factor <= 0 {
		return
	}
	anchor := v.ToData(p)
	k := v.transform.K * factor
	v.SetTransform(p.X-anchor.X*k, p.Y-anchor.Y*k, k)
}

// FitTransform returns the transform that fits boundary into the view box,
// preserving aspect ratio: k comes from the tighter axis and the other axis
// is centered. A zero-size boundary (one node, or all coordinates equal)
// keeps the current k and centers the boundary. An empty view box returns
// the current transform.
func (v *Viewport) FitTransform(boundary Rect) Transform {
	vw, vh := v.viewBox.Width(), v.viewBox.Height()
	bw, bh := boundary.Width(), boundary.Height()
	if vw <= 0 || vh <= 0 || !finite(bw) || !finite(bh) || bw < 0 || bh < 0 {
		return v.transform
	}

	k := v.transform.K
	switch {
	case bw > 0 && bh > 0:
		// The boundary is wider than the frame relative to height when its
		// aspect exceeds the frame's; width is then the binding constraint.
		if bw*vh > bh*vw {
			k = vw / bw
		} else {
			k = vh / bh
		}
	case bw > 0:
		k = vw / bw
	case bh > 0:
		k = vh / bh
	}
	if !finite(k) || k <= 0 {
		k = 1
	}

	c := boundary.Center()
	vc := v.viewBox.Center()
	return Transform{X: vc.X - c.X*k, Y: vc.Y - c.Y*k, K: k}
}

// Fit applies [Viewport.FitTransform] and returns the new transform.
func (v *Viewport) Fit(boundary Rect) Transform {
	t := v.FitTransform(boundary)
	v.SetTransform(t.X, t.Y, t.K)
	return v.transform
}

// FocusArea computes the margin-expanded data-space rectangle for a view box
// and transform.
func FocusArea(viewBox Rect, t Transform, margin float64) Rect {
	return Rect{
		Top:    (viewBox.Top-t.Y)/t.K - margin,
		Left:   (viewBox.Left-t.X)/t.K - margin,
		Bottom: (viewBox.Bottom-t.Y)/t.K + margin,
		Right:  (viewBox.Right-t.X)/t.K + margin,
	}
}

func (v *Viewport) recompute() {
	v.focus = FocusArea(v.viewBox, v.transform, v.margin)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
