package layout

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

// Rows places each generation on its own row, ordered so that siblings stay
// together and spouses follow their partner. Parent x positions are not
// consulted; each row is centred on x = 0 independently.
type Rows struct{}

// Name implements Strategy.
func (Rows) Name() string { return StrategyRows }

// Place implements Strategy.
func (Rows) Place(x *family.Index, opts Options) map[family.ID]Position {
	byGen := make(map[int][]family.ID)
	for _, m := range x.Members() {
		byGen[m.Gen()] = append(byGen[m.Gen()], m.ID)
	}
	gens := make([]int, 0, len(byGen))
	for g := range byGen {
		gens = append(gens, g)
	}
	slices.Sort(gens)

	positions := make(map[family.ID]Position, x.Len())
	for _, g := range gens {
		order, spouseGap := rowOrder(x, byGen[g])
		y := opts.rowY(g - 1)

		xs := make([]float64, len(order))
		cursor := 0.0
		for i := range order {
			if i > 0 {
				if spouseGap[i] {
					cursor += opts.SpouseGap
				} else {
					cursor += opts.HorizontalGap
				}
			}
			xs[i] = cursor
			cursor += opts.NodeWidth
		}

		offset := -cursor / 2
		for i, id := range order {
			positions[id] = Position{X: xs[i] + offset, Y: y}
		}
	}
	return positions
}

// rowOrder returns the left-to-right order of one generation row and, for
// each slot, whether it is a spouse directly following its partner.
func rowOrder(x *family.Index, row []family.ID) ([]family.ID, []bool) {
	inRow := make(map[family.ID]bool, len(row))
	for _, id := range row {
		inRow[id] = true
	}

	// The partner comes first so a mutual pair is never split; other
	// members pointing at id follow by spouse_order.
	spousesOf := func(id family.ID) []family.ID {
		var out, extra []family.ID
		if p, ok := x.Partner(id); ok && inRow[p.ID] {
			out = append(out, p.ID)
		}
		for _, other := range row {
			if other == id || slices.Contains(out, other) {
				continue
			}
			if s, ok := x.Spouse(other); ok && s.ID == id {
				extra = append(extra, other)
			}
		}
		x.SortBySpouseOrder(extra)
		return append(out, extra...)
	}

	// placedBy is the row member that will place id as its spouse.
	placedBy := func(id family.ID) (family.ID, bool) {
		if p, ok := x.Partner(id); ok && inRow[p.ID] {
			return p.ID, true
		}
		if s, ok := x.Spouse(id); ok && inRow[s.ID] {
			return s.ID, true
		}
		return "", false
	}

	var primaries []family.ID
	for _, id := range row {
		if x.HasParents(id) {
			primaries = append(primaries, id)
			continue
		}
		if by, ok := placedBy(id); !ok || !x.HasParents(by) {
			primaries = append(primaries, id)
		}
	}
	slices.SortFunc(primaries, func(a, b family.ID) int {
		if c := compareParentKey(parentKey(x, a), parentKey(x, b)); c != 0 {
			return c
		}
		ma, _ := x.Member(a)
		mb, _ := x.Member(b)
		if c := family.CompareOrder(ma.ChildOrder, mb.ChildOrder); c != 0 {
			return c
		}
		return family.CompareIDs(a, b)
	})

	placed := make(map[family.ID]bool, len(row))
	order := make([]family.ID, 0, len(row))
	spouseGap := make([]bool, 0, len(row))
	add := func(id family.ID, asSpouse bool) {
		placed[id] = true
		order = append(order, id)
		spouseGap = append(spouseGap, asSpouse)
	}

	for _, p := range primaries {
		if placed[p] {
			continue
		}
		add(p, false)
		var spouses []family.ID
		for _, s := range spousesOf(p) {
			if !placed[s] {
				spouses = append(spouses, s)
			}
		}
		x.SortBySpouseOrder(spouses)
		for _, s := range spouses {
			add(s, true)
		}
	}

	rest := slices.Clone(row)
	family.SortIDs(rest)
	for _, id := range rest {
		if !placed[id] {
			add(id, false)
		}
	}
	return order, spouseGap
}

// parentKey is the father id, or else the mother id, or empty.
func parentKey(x *family.Index, id family.ID) family.ID {
	m, _ := x.Member(id)
	if !m.FatherID.IsZero() {
		return m.FatherID
	}
	return m.MotherID
}

// compareParentKey sorts parentless members first.
func compareParentKey(a, b family.ID) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -1
	case b.IsZero():
		return 1
	}
	return family.CompareIDs(a, b)
}
