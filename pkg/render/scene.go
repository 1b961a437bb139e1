package render

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewconfig"
	"github.com/matzehuels/kintree/pkg/viewport"
)

// Default canvas size.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Scene is the input to every renderer.
type Scene struct {
	Members    map[family.ID]family.Member
	Layout     layout.Result
	Connectors []layout.Connector
	Config     viewconfig.Config
	View       viewport.Viewport
}

// NewScene builds a w x h scene. Transforms persisted in cfg are restored;
// without a persisted tree offset the tree is auto-fitted. Non-positive sizes
// use the defaults.
func NewScene(members []family.Member, res layout.Result, conns []layout.Connector, cfg viewconfig.Config, w, h float64) Scene {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	byID := make(map[family.ID]family.Member, len(members))
	for _, m := range members {
		m = m.Normalized()
		if _, ok := res.Positions[m.ID]; ok {
			byID[m.ID] = m
		}
	}
	return Scene{
		Members:    byID,
		Layout:     res,
		Connectors: conns,
		Config:     cfg,
		View:       viewFor(cfg, res.Bounds, w, h),
	}
}

func viewFor(cfg viewconfig.Config, bounds layout.Bounds, w, h float64) viewport.Viewport {
	v := viewport.New(w, h)
	if cfg.HasTreeOffset() {
		v.Tree = viewport.Transform{X: *cfg.TreeX, Y: *cfg.TreeY, Scale: deref(cfg.TreeScale, 1)}
	} else {
		// Degenerate bounds keep the identity transform.
		_ = v.AutoFit(bounds, viewport.DefaultPadding)
	}
	v.Title = viewport.Transform{X: deref(cfg.TitleX, 0), Y: deref(cfg.TitleY, 0), Scale: 1}
	v.Overlay = viewport.Transform{
		X:     deref(cfg.OverlayX, 0),
		Y:     deref(cfg.OverlayY, 0),
		Scale: deref(cfg.OverlayScale, 1),
	}
	return v
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Width returns the canvas width.
func (s Scene) Width() float64 { return s.View.Width }

// Height returns the canvas height.
func (s Scene) Height() float64 { return s.View.Height }

// Boxes returns the member boxes sorted by id.
func (s Scene) Boxes() []layout.Box { return s.Layout.Boxes() }

// Member returns the member drawn in box id.
func (s Scene) Member(id family.ID) family.Member {
	if m, ok := s.Members[id]; ok {
		return m
	}
	return family.Member{ID: id, Name: id.String()}
}

func (s Scene) memberList() []family.Member {
	out := make([]family.Member, 0, len(s.Members))
	for _, m := range s.Members {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b family.Member) int { return family.CompareIDs(a.ID, b.ID) })
	return out
}
