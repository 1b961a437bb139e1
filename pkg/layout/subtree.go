package layout

import "github.com/matzehuels/kintree/pkg/family"

// Subtree places each family unit centred above the block of its
// descendants' subtrees. It produces a true tree: children sit under their
// parents and sibling subtrees never interleave.
type Subtree struct{}

// Name implements Strategy.
func (Subtree) Name() string { return StrategySubtree }

// unit is a member laid out together with a same-generation spouse.
type unit struct {
	primary  family.ID
	spouse   family.ID
	children []*unit
	width    float64
}

func (u *unit) paired() bool { return !u.spouse.IsZero() }

// Place implements Strategy.
func (Subtree) Place(x *family.Index, opts Options) map[family.ID]Position {
	b := &forestBuilder{x: x, opts: opts, processed: make(map[family.ID]bool, x.Len())}
	forest := b.build()

	positions := make(map[family.ID]Position, x.Len())
	left := 0.0
	for i, root := range forest {
		if i > 0 {
			left += opts.HorizontalGap
		}
		b.place(root, left, -1, positions)
		left += root.width
	}

	bounds := boundsOf(positions, opts)
	if !bounds.Empty() {
		shiftX(positions, -bounds.Center().X)
	}
	return positions
}

// forestBuilder holds the per-call traversal state. Nothing here outlives one
// Place call.
type forestBuilder struct {
	x         *family.Index
	opts      Options
	processed map[family.ID]bool
}

// build returns the forest of root units. Regular roots come first, ordered
// by (generation, id); members unreachable from them (cyclic ancestry,
// one-sided spouse links) follow as extra roots.
func (b *forestBuilder) build() []*unit {
	var forest []*unit
	for _, id := range b.x.Roots() {
		if b.processed[id] || b.pulledBySpouse(id) {
			continue
		}
		forest = append(forest, b.unitFor(id))
	}

	rest := b.x.IDs()
	b.x.SortByGeneration(rest)
	for _, id := range rest {
		if !b.processed[id] {
			forest = append(forest, b.unitFor(id))
		}
	}

	for _, root := range forest {
		b.measure(root)
	}
	return forest
}

// pulledBySpouse reports whether a root will be placed as the spouse of a
// member that has parents.
func (b *forestBuilder) pulledBySpouse(id family.ID) bool {
	s, ok := b.x.Partner(id)
	return ok && b.x.HasParents(s.ID)
}

// unitFor builds the unit rooted at id. Every member is marked processed on
// entry, so cyclic parent chains terminate.
func (b *forestBuilder) unitFor(id family.ID) *unit {
	b.processed[id] = true
	u := &unit{primary: id}

	m, _ := b.x.Member(id)
	if s, ok := b.x.Partner(id); ok && s.Gen() == m.Gen() && !b.processed[s.ID] {
		b.processed[s.ID] = true
		u.spouse = s.ID
	}

	var kids []family.ID
	seen := make(map[family.ID]bool)
	for _, parent := range []family.ID{u.primary, u.spouse} {
		if parent.IsZero() {
			continue
		}
		for _, c := range b.x.Children(parent) {
			if !seen[c] && !b.processed[c] {
				seen[c] = true
				kids = append(kids, c)
			}
		}
	}
	b.x.SortByChildOrder(kids)

	for _, c := range kids {
		// An earlier sibling's subtree may have claimed c as a spouse.
		if b.processed[c] {
			continue
		}
		u.children = append(u.children, b.unitFor(c))
	}
	return u
}

func (b *forestBuilder) selfWidth(u *unit) float64 {
	if u.paired() {
		return 2*b.opts.NodeWidth + b.opts.SpouseGap
	}
	return b.opts.NodeWidth
}

// childrenWidth is the width of the children block laid side by side.
func (b *forestBuilder) childrenWidth(u *unit) float64 {
	if len(u.children) == 0 {
		return 0
	}
	w := b.opts.HorizontalGap * float64(len(u.children)-1)
	for _, c := range u.children {
		w += c.width
	}
	return w
}

// measure fills width bottom-up. Each unit is measured exactly once.
func (b *forestBuilder) measure(u *unit) {
	for _, c := range u.children {
		b.measure(c)
	}
	u.width = max(b.selfWidth(u), b.childrenWidth(u))
}

// place positions u inside the slot [left, left+u.width]. Rows follow the
// generation but are pushed below the parent row when the input has a child
// on the same or an earlier generation than its parent.
func (b *forestBuilder) place(u *unit, left float64, parentRow int, out map[family.ID]Position) {
	m, _ := b.x.Member(u.primary)
	row := max(m.Gen()-1, parentRow+1)
	y := b.opts.rowY(row)

	selfLeft := left + (u.width-b.selfWidth(u))/2
	out[u.primary] = Position{X: selfLeft, Y: y}
	if u.paired() {
		out[u.spouse] = Position{X: selfLeft + b.opts.NodeWidth + b.opts.SpouseGap, Y: y}
	}

	childLeft := left + (u.width-b.childrenWidth(u))/2
	for _, c := range u.children {
		b.place(c, childLeft, row, out)
		childLeft += c.width + b.opts.HorizontalGap
	}
}
