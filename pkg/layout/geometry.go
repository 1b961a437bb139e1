package layout

import "github.com/matzehuels/kintree/pkg/family"

// Point is a 2D coordinate in tree space. Y grows downward, as in SVG.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is the top-left corner of a member's box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is the rectangle occupied by one member.
type Box struct {
	ID          family.ID
	Left, Right float64
	Top, Bottom float64
}

// Width returns the horizontal span of the box.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return (b.Left + b.Right) / 2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b.Top + b.Bottom) / 2 }

// Overlaps reports whether two boxes share interior area. Touching edges do
// not count.
func (b Box) Overlaps(o Box) bool {
	return b.Left < o.Right && o.Left < b.Right && b.Top < o.Bottom && o.Top < b.Bottom
}

// Bounds is the axis-aligned rectangle spanning every box of a layout.
// The zero value is empty.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Empty reports whether the bounds enclose no area.
func (b Bounds) Empty() bool { return b.MaxX <= b.MinX || b.MaxY <= b.MinY }

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Extend returns bounds grown to include box. Extending empty bounds yields
// exactly the box.
func (b Bounds) Extend(box Box) Bounds {
	if b.Empty() {
		return Bounds{MinX: box.Left, MaxX: box.Right, MinY: box.Top, MaxY: box.Bottom}
	}
	return Bounds{
		MinX: min(b.MinX, box.Left),
		MaxX: max(b.MaxX, box.Right),
		MinY: min(b.MinY, box.Top),
		MaxY: max(b.MaxY, box.Bottom),
	}
}

// boundsOf computes the bounds of a position set.
func boundsOf(positions map[family.ID]Position, opts Options) Bounds {
	var b Bounds
	for id, p := range positions {
		b = b.Extend(boxAt(id, p, opts))
	}
	return b
}

func boxAt(id family.ID, p Position, opts Options) Box {
	return Box{
		ID:     id,
		Left:   p.X,
		Right:  p.X + opts.NodeWidth,
		Top:    p.Y,
		Bottom: p.Y + opts.NodeHeight,
	}
}

// shiftX moves every position horizontally by dx.
func shiftX(positions map[family.ID]Position, dx float64) {
	if dx == 0 {
		return
	}
	for id, p := range positions {
		p.X += dx
		positions[id] = p
	}
}
