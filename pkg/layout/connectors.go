package layout

import "github.com/matzehuels/kintree/pkg/family"

// ConnectorKind distinguishes descent lines from marriage lines.
type ConnectorKind string

const (
	KindParentChild ConnectorKind = "parentChild"
	KindSpousal     ConnectorKind = "spousal"
)

// Connector is a polyline between member boxes.
//
// For parent-child connectors From is the parent the line starts at (the
// father when both parents share one line, with Partner set to the mother)
// and To is the child. For spousal connectors From is the referencing member
// and To its spouse.
type Connector struct {
	Kind    ConnectorKind `json:"kind"`
	From    family.ID     `json:"from"`
	Partner family.ID     `json:"partner,omitempty"`
	To      family.ID     `json:"to"`
	Points  []Point       `json:"points"`
}

// Connectors builds the connector polylines for a computed layout. Parent
// connectors come first ordered by child id, then spousal connectors ordered
// by the referencing member's id.
func Connectors(members []family.Member, r Result) []Connector {
	return ConnectorsIndex(family.NewIndex(members), r)
}

// ConnectorsIndex is Connectors over a prebuilt index.
func ConnectorsIndex(x *family.Index, r Result) []Connector {
	var out []Connector
	ids := x.IDs()

	for _, id := range ids {
		if c, ok := parentConnector(x, r, id); ok {
			out = append(out, c)
		}
	}

	seen := make(map[[2]family.ID]bool)
	for _, id := range ids {
		s, ok := x.Spouse(id)
		if !ok {
			continue
		}
		key := pairKey(id, s.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		if c, ok := spousalConnector(r, id, s.ID); ok {
			out = append(out, c)
		}
	}
	return out
}

func pairKey(a, b family.ID) [2]family.ID {
	if family.CompareIDs(a, b) > 0 {
		a, b = b, a
	}
	return [2]family.ID{a, b}
}

// parentConnector draws the elbow from the parent couple, or a single
// parent, down to the child's top edge.
func parentConnector(x *family.Index, r Result, child family.ID) (Connector, bool) {
	cb, ok := r.Box(child)
	if !ok {
		return Connector{}, false
	}
	m, _ := x.Member(child)
	fb, hasFather := r.Box(m.FatherID)
	mb, hasMother := r.Box(m.MotherID)

	var (
		c            = Connector{Kind: KindParentChild, To: child}
		start        Point
		parentBottom float64
	)
	switch {
	case hasFather && hasMother && x.IsMutualSpouse(m.FatherID, m.MotherID):
		lower := max(fb.Top, mb.Top)
		start = Point{X: (fb.CenterX() + mb.CenterX()) / 2, Y: lower + r.Options.NodeHeight/2}
		parentBottom = lower + r.Options.NodeHeight
		c.From, c.Partner = m.FatherID, m.MotherID
	case hasFather:
		start = Point{X: fb.CenterX(), Y: fb.Bottom}
		parentBottom = fb.Bottom
		c.From = m.FatherID
	case hasMother:
		start = Point{X: mb.CenterX(), Y: mb.Bottom}
		parentBottom = mb.Bottom
		c.From = m.MotherID
	default:
		return Connector{}, false
	}

	midY := (parentBottom + cb.Top) / 2
	c.Points = compact([]Point{
		start,
		{X: start.X, Y: midY},
		{X: cb.CenterX(), Y: midY},
		{X: cb.CenterX(), Y: cb.Top},
	})
	return c, true
}

// spousalConnector joins the facing vertical edges of two boxes at
// mid-height. Boxes on different rows get a single diagonal segment; boxes
// stacked in the same column are joined bottom to top.
func spousalConnector(r Result, from, to family.ID) (Connector, bool) {
	a, okA := r.Box(from)
	b, okB := r.Box(to)
	if !okA || !okB {
		return Connector{}, false
	}

	var p, q Point
	switch {
	case a.Right <= b.Left:
		p, q = Point{X: a.Right, Y: a.CenterY()}, Point{X: b.Left, Y: b.CenterY()}
	case b.Right <= a.Left:
		p, q = Point{X: a.Left, Y: a.CenterY()}, Point{X: b.Right, Y: b.CenterY()}
	case a.Top < b.Top:
		p, q = Point{X: a.CenterX(), Y: a.Bottom}, Point{X: b.CenterX(), Y: b.Top}
	default:
		p, q = Point{X: a.CenterX(), Y: a.Top}, Point{X: b.CenterX(), Y: b.Bottom}
	}
	return Connector{Kind: KindSpousal, From: from, To: to, Points: []Point{p, q}}, true
}

// compact drops consecutive duplicate points.
func compact(pts []Point) []Point {
	out := []Point{pts[0]}
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
