package viewport

import (
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

// Scale limits for Zoom.
const (
	MinScale = 0.05
	MaxScale = 8.0
)

// DefaultPadding is the screen margin kept around the tree by AutoFit.
const DefaultPadding = 40.0

// Transform maps tree space to screen space: screen = tree*Scale + (X, Y).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{Scale: 1}

// Apply maps a tree-space point to screen space.
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: p.X*t.Scale + t.X, Y: p.Y*t.Scale + t.Y}
}

// Invert maps a screen-space point back to tree space. A zero scale is
// treated as 1.
func (t Transform) Invert(p layout.Point) layout.Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return layout.Point{X: (p.X - t.X) / s, Y: (p.Y - t.Y) / s}
}

// Viewport is the visible screen area and the transforms of the three
// movable layers: the tree group, the title block (scale fixed at 1) and the
// overlay image. All methods are plain arithmetic; Viewport is not safe for
// concurrent use on its own, see Session.
type Viewport struct {
	Width, Height float64
	Tree          Transform
	Title         Transform
	Overlay       Transform
}

// New returns a w x h viewport with identity transforms.
func New(w, h float64) Viewport {
	return Viewport{Width: w, Height: h, Tree: Identity, Title: Identity, Overlay: Identity}
}

// Center returns the screen-space centre of the viewport.
func (v Viewport) Center() layout.Point {
	return layout.Point{X: v.Width / 2, Y: v.Height / 2}
}

// Zoom scales the tree by factor around anchor (screen space). A nil anchor
// zooms around the viewport centre. The resulting scale is clamped to
// [MinScale, MaxScale]; the offset uses the factor actually applied, so the
// anchor stays fixed on screen.
func (v *Viewport) Zoom(factor float64, anchor *layout.Point) {
	if factor <= 0 {
		return
	}
	a := v.Center()
	if anchor != nil {
		a = *anchor
	}
	old := v.Tree.Scale
	if old == 0 {
		old = 1
	}
	next := min(max(old*factor, MinScale), MaxScale)
	eff := next / old

	v.Tree.X = a.X - (a.X-v.Tree.X)*eff
	v.Tree.Y = a.Y - (a.Y-v.Tree.Y)*eff
	v.Tree.Scale = next
}

// PanBy moves the tree by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Tree.X += dx
	v.Tree.Y += dy
}

// MoveTitle moves the title block by a screen-space delta.
func (v *Viewport) MoveTitle(dx, dy float64) {
	v.Title.X += dx
	v.Title.Y += dy
	v.Title.Scale = 1
}

// MoveOverlay moves the overlay image by a screen-space delta.
func (v *Viewport) MoveOverlay(dx, dy float64) {
	v.Overlay.X += dx
	v.Overlay.Y += dy
}

// ZoomOverlay scales the overlay image by factor, clamped like Zoom. The
// overlay keeps its top-left corner.
func (v *Viewport) ZoomOverlay(factor float64) {
	if factor <= 0 {
		return
	}
	old := v.Overlay.Scale
	if old == 0 {
		old = 1
	}
	v.Overlay.Scale = min(max(old*factor, MinScale), MaxScale)
}

// AutoFit scales and centres bounds inside the viewport, keeping padding on
// every side and never enlarging beyond scale 1. It returns a
// DEGENERATE_BOUNDS error and leaves the transform unchanged when bounds are
// empty or the viewport is not larger than twice the padding.
func (v *Viewport) AutoFit(bounds layout.Bounds, padding float64) error {
	if bounds.Empty() {
		return errors.New(errors.ErrCodeDegenerateBounds, "nothing to fit: bounds are empty")
	}
	availW := v.Width - 2*padding
	availH := v.Height - 2*padding
	if availW <= 0 || availH <= 0 {
		return errors.New(errors.ErrCodeDegenerateBounds,
			"viewport %gx%g too small for padding %g", v.Width, v.Height, padding)
	}

	scale := min(availW/bounds.Width(), availH/bounds.Height(), 1)
	c := bounds.Center()
	v.Tree = Transform{
		X:     v.Width/2 - c.X*scale,
		Y:     v.Height/2 - c.Y*scale,
		Scale: scale,
	}
	return nil
}

// ScreenToTree converts a screen point to tree coordinates.
func (v Viewport) ScreenToTree(p layout.Point) layout.Point { return v.Tree.Invert(p) }

// TreeToScreen converts a tree point to screen coordinates.
func (v Viewport) TreeToScreen(p layout.Point) layout.Point { return v.Tree.Apply(p) }

// Resize changes the viewport size. Transforms are kept.
func (v *Viewport) Resize(w, h float64) {
	v.Width, v.Height = w, h
}

// ResetTransforms sets every layer back to identity.
func (v *Viewport) ResetTransforms() {
	v.Tree, v.Title, v.Overlay = Identity, Identity, Identity
}
