package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestZoomRoundTrip(t *testing.T) {
	anchors := []*layout.Point{nil, {X: 0, Y: 0}, {X: 123, Y: -45}}
	for _, a := range anchors {
		v := New(800, 600)
		v.Tree = Transform{X: 37, Y: -12, Scale: 0.8}
		before := v.Tree

		v.Zoom(1.2, a)
		v.Zoom(1/1.2, a)

		if !near(v.Tree.X, before.X) || !near(v.Tree.Y, before.Y) || !near(v.Tree.Scale, before.Scale) {
			t.Errorf("anchor %v: after round trip %+v, want %+v", a, v.Tree, before)
		}
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	v := New(800, 600)
	v.Tree = Transform{X: 100, Y: 50, Scale: 1}
	anchor := layout.Point{X: 300, Y: 200}
	treePt := v.ScreenToTree(anchor)

	v.Zoom(2, &anchor)

	got := v.TreeToScreen(treePt)
	if !near(got.X, anchor.X) || !near(got.Y, anchor.Y) {
		t.Errorf("anchor moved to %+v", got)
	}
	if v.Tree.Scale != 2 {
		t.Errorf("Scale = %v, want 2", v.Tree.Scale)
	}
}

func TestZoomDefaultsToCentre(t *testing.T) {
	v := New(800, 600)
	v.Zoom(2, nil)
	// centre (400, 300) stays put: 400 - (400-0)*2 = -400
	if v.Tree.X != -400 || v.Tree.Y != -300 {
		t.Errorf("Tree = %+v, want offset (-400, -300)", v.Tree)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		factor    float64
		wantScale float64
	}{
		{"upper clamp", 6, 10, MaxScale},
		{"lower clamp", 0.1, 0.01, MinScale},
		{"in range", 1, 0.5, 0.5},
		{"ignored non-positive", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(800, 600)
			v.Tree = Transform{X: 10, Y: 20, Scale: tt.start}
			anchor := layout.Point{X: 0, Y: 0}
			v.Zoom(tt.factor, &anchor)
			if !near(v.Tree.Scale, tt.wantScale) {
				t.Fatalf("Scale = %v, want %v", v.Tree.Scale, tt.wantScale)
			}
			// the offset moves by the factor actually applied
			eff := tt.wantScale / tt.start
			if !near(v.Tree.X, 10*eff) || !near(v.Tree.Y, 20*eff) {
				t.Errorf("offset = (%v, %v), want (%v, %v)", v.Tree.X, v.Tree.Y, 10*eff, 20*eff)
			}
		})
	}
}

func TestAutoFit(t *testing.T) {
	v := New(800, 600)
	bounds := layout.Bounds{MinX: -500, MaxX: 500, MinY: 0, MaxY: 500}

	if err := v.AutoFit(bounds, 120); err != nil {
		t.Fatal(err)
	}
	if !near(v.Tree.Scale, 0.56) {
		t.Errorf("Scale = %v, want 0.56", v.Tree.Scale)
	}
	centre := v.TreeToScreen(bounds.Center())
	if !near(centre.X, 400) || !near(centre.Y, 300) {
		t.Errorf("bounds centre maps to %+v, want (400, 300)", centre)
	}
}

func TestAutoFitNeverEnlarges(t *testing.T) {
	v := New(800, 600)
	if err := v.AutoFit(layout.Bounds{MinX: 0, MaxX: 100, MinY: 0, MaxY: 50}, 20); err != nil {
		t.Fatal(err)
	}
	if v.Tree.Scale != 1 {
		t.Errorf("Scale = %v, want 1", v.Tree.Scale)
	}
}

func TestAutoFitDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		height  float64
		bounds  layout.Bounds
		padding float64
	}{
		{"empty bounds", 800, 600, layout.Bounds{}, 20},
		{"zero height", 800, 600, layout.Bounds{MinX: 0, MaxX: 100, MinY: 5, MaxY: 5}, 20},
		{"viewport smaller than padding", 30, 600, layout.Bounds{MaxX: 100, MaxY: 100}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.width, tt.height)
			v.Tree = Transform{X: 7, Y: 8, Scale: 0.9}
			err := v.AutoFit(tt.bounds, tt.padding)
			if !errors.Is(err, errors.ErrCodeDegenerateBounds) {
				t.Fatalf("err = %v, want DEGENERATE_BOUNDS", err)
			}
			if v.Tree != (Transform{X: 7, Y: 8, Scale: 0.9}) {
				t.Errorf("transform changed to %+v", v.Tree)
			}
		})
	}
}

func TestScreenTreeConversion(t *testing.T) {
	v := New(800, 600)
	v.Tree = Transform{X: 100, Y: -40, Scale: 0.5}

	p := layout.Point{X: 250, Y: 60}
	tree := v.ScreenToTree(p)
	if tree != (layout.Point{X: 300, Y: 200}) {
		t.Errorf("ScreenToTree = %+v", tree)
	}
	if back := v.TreeToScreen(tree); back != p {
		t.Errorf("TreeToScreen = %+v, want %+v", back, p)
	}
}

func TestLayersMoveIndependently(t *testing.T) {
	v := New(800, 600)
	v.PanBy(10, 20)
	v.MoveTitle(-5, 3)
	v.MoveOverlay(1, 1)
	v.ZoomOverlay(2)

	if v.Tree != (Transform{X: 10, Y: 20, Scale: 1}) {
		t.Errorf("Tree = %+v", v.Tree)
	}
	if v.Title != (Transform{X: -5, Y: 3, Scale: 1}) {
		t.Errorf("Title = %+v", v.Title)
	}
	if v.Overlay != (Transform{X: 1, Y: 1, Scale: 2}) {
		t.Errorf("Overlay = %+v", v.Overlay)
	}

	v.Resize(1024, 768)
	if v.Width != 1024 || v.Tree.X != 10 {
		t.Errorf("Resize changed transforms: %+v", v)
	}
}
