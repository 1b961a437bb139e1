package layout

import "testing"

func TestBoxDimensions(t *testing.T) {
	tests := []struct {
		name           string
		box            Box
		width, height  float64
		centerX, centY float64
	}{
		{
			name:  "default node at origin",
			box:   Box{Left: 0, Right: 160, Top: 0, Bottom: 80},
			width: 160, height: 80, centerX: 80, centY: 40,
		},
		{
			name:  "negative x",
			box:   Box{Left: -175, Right: -15, Top: 180, Bottom: 260},
			width: 160, height: 80, centerX: -95, centY: 220,
		},
		{
			name: "degenerate",
			box:  Box{Left: 10, Right: 10, Top: 5, Bottom: 5},
			width: 0, height: 0, centerX: 10, centY: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Width(); got != tt.width {
				t.Errorf("Width() = %v, want %v", got, tt.width)
			}
			if got := tt.box.Height(); got != tt.height {
				t.Errorf("Height() = %v, want %v", got, tt.height)
			}
			if got := tt.box.CenterX(); got != tt.centerX {
				t.Errorf("CenterX() = %v, want %v", got, tt.centerX)
			}
			if got := tt.box.CenterY(); got != tt.centY {
				t.Errorf("CenterY() = %v, want %v", got, tt.centY)
			}
		})
	}
}

func TestBoxOverlaps(t *testing.T) {
	base := Box{Left: 0, Right: 100, Top: 0, Bottom: 50}

	tests := []struct {
		name  string
		other Box
		want  bool
	}{
		{"identical", base, true},
		{"inside", Box{Left: 10, Right: 20, Top: 10, Bottom: 20}, true},
		{"touching right edge", Box{Left: 100, Right: 200, Top: 0, Bottom: 50}, false},
		{"touching bottom edge", Box{Left: 0, Right: 100, Top: 50, Bottom: 100}, false},
		{"separate row", Box{Left: 0, Right: 100, Top: 180, Bottom: 260}, false},
		{"partial", Box{Left: 90, Right: 190, Top: 40, Bottom: 90}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric")
			}
		})
	}
}

func TestBoundsExtend(t *testing.T) {
	var b Bounds
	if !b.Empty() {
		t.Fatal("zero Bounds should be empty")
	}

	b = b.Extend(Box{Left: 10, Right: 170, Top: 0, Bottom: 80})
	if b != (Bounds{MinX: 10, MaxX: 170, MinY: 0, MaxY: 80}) {
		t.Errorf("first Extend = %+v", b)
	}

	b = b.Extend(Box{Left: -50, Right: 110, Top: 180, Bottom: 260})
	want := Bounds{MinX: -50, MaxX: 170, MinY: 0, MaxY: 260}
	if b != want {
		t.Errorf("Extend = %+v, want %+v", b, want)
	}
	if b.Width() != 220 || b.Height() != 260 {
		t.Errorf("size = %vx%v", b.Width(), b.Height())
	}
	if c := b.Center(); c != (Point{X: 60, Y: 130}) {
		t.Errorf("Center() = %+v", c)
	}
}

func TestOptionsDefaultsAndValidate(t *testing.T) {
	o := DefaultOptions()
	if o.NodeWidth != 160 || o.NodeHeight != 80 || o.HorizontalGap != 40 ||
		o.VerticalGap != 100 || o.SpouseGap != 30 || o.BaseY != 0 || o.Strategy != StrategySubtree {
		t.Errorf("DefaultOptions() = %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{NodeWidth: -1, NodeHeight: 80}},
		{"negative gap", Options{NodeWidth: 1, NodeHeight: 1, HorizontalGap: -5}},
		{"unknown strategy", Options{NodeWidth: 1, NodeHeight: 1, Strategy: "radial"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
