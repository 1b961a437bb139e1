package layout

import "github.com/matzehuels/kintree/pkg/family"

// Strategy decides the x coordinate (and the row) of every member.
// A computation uses exactly one strategy.
type Strategy interface {
	// Name is the value accepted by Options.Strategy.
	Name() string
	// Place returns a position for every member in the index.
	Place(x *family.Index, opts Options) map[family.ID]Position
}

// StrategyFor returns the strategy registered under name. Unknown and empty
// names fall back to Subtree.
func StrategyFor(name string) Strategy {
	switch name {
	case StrategyRows:
		return Rows{}
	default:
		return Subtree{}
	}
}
