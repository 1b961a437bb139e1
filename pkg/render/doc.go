// Package render turns a computed family-tree layout into output artifacts.
//
// # Overview
//
// A [Scene] bundles everything a renderer needs: the members (for labels),
// the [layout.Result], the connector polylines, the parsed view configuration
// and the [viewport.Viewport] that places the tree, title and overlay layers
// on the canvas. [NewScene] restores persisted transforms from the
// configuration, or auto-fits the tree when none are stored.
//
// Output formats:
//
//   - [SVG]: the full diagram with background, title, gender-coloured member
//     boxes, lifespans and solid descent / dashed marriage lines
//   - [LayoutJSON]: positions, connectors and transforms for a browser front end
//   - [DOT] and [GraphvizSVG]: a node-link view laid out by Graphviz
//   - [ToPDF] and [ToPNG]: conversions of any SVG via rsvg-convert
//
// Typical use:
//
//	res := layout.Compute(members, layout.DefaultOptions())
//	conns := layout.Connectors(members, res)
//	scene := render.NewScene(members, res, conns, cfg, 1200, 800)
//	svg := render.SVG(scene, render.WithHighlight())
//
// [layout.Result]: github.com/matzehuels/kintree/pkg/layout.Result
// [viewport.Viewport]: github.com/matzehuels/kintree/pkg/viewport.Viewport
package render
