// Package render draws a view as a static picture.
//
// # Overview
//
// A [Scene] is the resolved drawing of one [viewstate.Frame]: every node and
// edge with its position and its appearance channels (color, size, label,
// image) already mapped through [appearance.Scale]. Scenes are built with
// [Build] under the view lock and can then be serialised without it:
//
//	var sc render.Scene
//	view.Read(func(f viewstate.Frame) { sc = render.Build(f) })
//	svg := render.RenderSVG(sc)
//
// # Formats
//
//   - [RenderSVG]: self-contained SVG in data space fitted to the scene, or
//     in screen space through the view transform with [WithViewport].
//   - [ToDOT] and [RenderDOT]: Graphviz DOT with pinned node positions,
//     rendered in-process by go-graphviz's neato engine.
//   - [RenderJSON]: the scene as JSON for external tooling.
//   - [ToPDF] and [ToPNG]: conversion of any SVG via rsvg-convert.
//
// [viewstate.Frame]: github.com/matzehuels/netview/pkg/viewstate.Frame
// [appearance.Scale]: github.com/matzehuels/netview/pkg/appearance.Scale
package render
