package layout

import "github.com/matzehuels/kintree/pkg/family"

// Result is the output of Compute. It is never mutated after Compute returns.
type Result struct {
	Positions map[family.ID]Position `json:"positions"`
	Bounds    Bounds                 `json:"bounds"`
	Strategy  string                 `json:"strategy"`
	Options   Options                `json:"options"`

	// Problems lists input references that were recovered (dangling ids,
	// self references, duplicates).
	Problems []error `json:"-"`
}

// Len returns the number of positioned members.
func (r Result) Len() int { return len(r.Positions) }

// Box returns the rectangle occupied by id.
func (r Result) Box(id family.ID) (Box, bool) {
	p, ok := r.Positions[id]
	if !ok {
		return Box{}, false
	}
	return boxAt(id, p, r.Options), true
}

// Boxes returns every box in CompareIDs order.
func (r Result) Boxes() []Box {
	ids := make([]family.ID, 0, len(r.Positions))
	for id := range r.Positions {
		ids = append(ids, id)
	}
	family.SortIDs(ids)
	out := make([]Box, len(ids))
	for i, id := range ids {
		out[i] = boxAt(id, r.Positions[id], r.Options)
	}
	return out
}

// Compute lays out members. It is a pure function: the same members (in any
// order) and options always give the same result. Zero-valued options take
// their defaults; an unknown strategy name falls back to Subtree.
func Compute(members []family.Member, opts Options) Result {
	return ComputeIndex(family.NewIndex(members), opts)
}

// ComputeIndex is Compute over a prebuilt index.
func ComputeIndex(x *family.Index, opts Options) Result {
	opts.SetDefaults()
	strategy := StrategyFor(opts.Strategy)
	opts.Strategy = strategy.Name()

	positions := strategy.Place(x, opts)
	return Result{
		Positions: positions,
		Bounds:    boundsOf(positions, opts),
		Strategy:  strategy.Name(),
		Options:   opts,
		Problems:  x.Problems(),
	}
}
