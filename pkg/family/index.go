package family

import (
	"cmp"
	"slices"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Index provides constant-time relationship lookups over a member list.
// It is immutable once built and safe for concurrent reads.
type Index struct {
	byID     map[ID]Member
	ids      []ID
	children map[ID][]ID
	partner  map[ID]ID
	problems []error
}

// NewIndex builds an Index from members. Invalid input is never an error:
// dangling and self references are cleared, duplicate ids keep the last
// record, and every recovery is recorded in Problems.
func NewIndex(members []Member) *Index {
	x := &Index{
		byID:     make(map[ID]Member, len(members)),
		children: make(map[ID][]ID),
		partner:  make(map[ID]ID),
	}

	for _, m := range members {
		m = m.Normalized()
		if m.ID.IsZero() {
			x.problem("member %q has no id, skipped", m.Name)
			continue
		}
		if _, dup := x.byID[m.ID]; dup {
			x.problem("duplicate member id %s, last record wins", m.ID)
		}
		x.byID[m.ID] = m
	}

	x.ids = make([]ID, 0, len(x.byID))
	for id := range x.byID {
		x.ids = append(x.ids, id)
	}
	SortIDs(x.ids)

	for _, id := range x.ids {
		m := x.byID[id]
		m.FatherID = x.resolve(m, "father_id", m.FatherID)
		m.MotherID = x.resolve(m, "mother_id", m.MotherID)
		m.SpouseID = x.resolve(m, "spouse_id", m.SpouseID)
		x.byID[id] = m
	}

	for _, id := range x.ids {
		m := x.byID[id]
		if !m.FatherID.IsZero() {
			x.children[m.FatherID] = append(x.children[m.FatherID], id)
		}
		if !m.MotherID.IsZero() && m.MotherID != m.FatherID {
			x.children[m.MotherID] = append(x.children[m.MotherID], id)
		}
	}
	for parent, kids := range x.children {
		x.SortByChildOrder(kids)
		x.children[parent] = kids
	}
	x.pairSpouses()
	return x
}

// pairSpouses matches members into layout partners. Mutual links always
// pair. A one-sided link pairs only with a target that has no spouse_id of
// its own; among several claimants the lowest spouse_order then id wins.
func (x *Index) pairSpouses() {
	var oneSided []ID
	for _, id := range x.ids {
		s := x.byID[id].SpouseID
		switch {
		case s.IsZero():
		case x.byID[s].SpouseID == id:
			x.partner[id] = s
		case x.byID[s].SpouseID.IsZero():
			oneSided = append(oneSided, id)
		}
	}
	x.SortBySpouseOrder(oneSided)
	for _, id := range oneSided {
		s := x.byID[id].SpouseID
		if _, taken := x.partner[s]; !taken {
			x.partner[id] = s
			x.partner[s] = id
		}
	}
}

func (x *Index) resolve(m Member, field string, ref ID) ID {
	switch {
	case ref.IsZero():
		return ""
	case ref == m.ID:
		x.problem("member %s: %s references itself", m.ID, field)
		return ""
	}
	if _, ok := x.byID[ref]; !ok {
		x.problem("member %s: %s %s does not exist", m.ID, field, ref)
		return ""
	}
	return ref
}

func (x *Index) problem(format string, args ...any) {
	x.problems = append(x.problems, errors.New(errors.ErrCodeReference, format, args...))
}

// Len returns the number of distinct members.
func (x *Index) Len() int { return len(x.ids) }

// IDs returns all member ids in CompareIDs order.
func (x *Index) IDs() []ID { return slices.Clone(x.ids) }

// Has reports whether id names a member.
func (x *Index) Has(id ID) bool {
	_, ok := x.byID[id]
	return ok
}

// Member returns the member with the given id. References on the returned
// value are already resolved: dangling ids are cleared.
func (x *Index) Member(id ID) (Member, bool) {
	m, ok := x.byID[id]
	return m, ok
}

// Members returns every member in CompareIDs order.
func (x *Index) Members() []Member {
	out := make([]Member, len(x.ids))
	for i, id := range x.ids {
		out[i] = x.byID[id]
	}
	return out
}

// Father returns the resolved father of id.
func (x *Index) Father(id ID) (Member, bool) {
	m, ok := x.byID[id]
	if !ok || m.FatherID.IsZero() {
		return Member{}, false
	}
	return x.Member(m.FatherID)
}

// Mother returns the resolved mother of id.
func (x *Index) Mother(id ID) (Member, bool) {
	m, ok := x.byID[id]
	if !ok || m.MotherID.IsZero() {
		return Member{}, false
	}
	return x.Member(m.MotherID)
}

// HasParents reports whether id has a resolvable father or mother.
func (x *Index) HasParents(id ID) bool {
	m, ok := x.byID[id]
	return ok && (!m.FatherID.IsZero() || !m.MotherID.IsZero())
}

// Children returns the members whose father or mother is id, ordered by
// child_order (missing last) then id. The slice is a copy.
func (x *Index) Children(id ID) []ID {
	return slices.Clone(x.children[id])
}

// Spouse returns the member referenced by id's spouse_id.
func (x *Index) Spouse(id ID) (Member, bool) {
	m, ok := x.byID[id]
	if !ok || m.SpouseID.IsZero() {
		return Member{}, false
	}
	return x.Member(m.SpouseID)
}

// IsMutualSpouse reports whether a and b reference each other as spouses.
func (x *Index) IsMutualSpouse(a, b ID) bool {
	ma, okA := x.byID[a]
	mb, okB := x.byID[b]
	return okA && okB && a != b && ma.SpouseID == b && mb.SpouseID == a
}

// Partner returns the member id is laid out beside. Partners are symmetric:
// a mutual spouse, or one side of a one-sided link whose target is otherwise
// unmarried. Generation is not considered.
func (x *Index) Partner(id ID) (Member, bool) {
	p, ok := x.partner[id]
	if !ok {
		return Member{}, false
	}
	return x.Member(p)
}

// Roots returns members without a resolvable parent, ordered by generation
// then id.
func (x *Index) Roots() []ID {
	var roots []ID
	for _, id := range x.ids {
		if !x.HasParents(id) {
			roots = append(roots, id)
		}
	}
	x.SortByGeneration(roots)
	return roots
}

// Problems returns the recovered input problems, each carrying
// errors.ErrCodeReference.
func (x *Index) Problems() []error { return slices.Clone(x.problems) }

// SortByChildOrder sorts ids by child_order ascending with missing values
// last, ties broken by CompareIDs.
func (x *Index) SortByChildOrder(ids []ID) {
	slices.SortFunc(ids, func(a, b ID) int {
		if c := CompareOrder(x.byID[a].ChildOrder, x.byID[b].ChildOrder); c != 0 {
			return c
		}
		return CompareIDs(a, b)
	})
}

// SortBySpouseOrder sorts ids by spouse_order ascending with missing values
// last, ties broken by CompareIDs.
func (x *Index) SortBySpouseOrder(ids []ID) {
	slices.SortFunc(ids, func(a, b ID) int {
		if c := CompareOrder(x.byID[a].SpouseOrder, x.byID[b].SpouseOrder); c != 0 {
			return c
		}
		return CompareIDs(a, b)
	})
}

// SortByGeneration sorts ids by generation then CompareIDs.
func (x *Index) SortByGeneration(ids []ID) {
	slices.SortFunc(ids, func(a, b ID) int {
		if c := cmp.Compare(x.byID[a].Gen(), x.byID[b].Gen()); c != 0 {
			return c
		}
		return CompareIDs(a, b)
	})
}

// CompareOrder orders optional sort keys ascending with missing values last.
func CompareOrder(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
