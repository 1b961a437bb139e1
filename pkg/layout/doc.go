// Package layout computes non-overlapping positions for family tree members
// and the connector polylines between them.
//
// # Overview
//
// [Compute] takes a flat member list and [Options] and returns a [Result]:
// the top-left corner of every member's NodeWidth x NodeHeight box plus the
// [Bounds] spanning all boxes. [Connectors] turns a Result into the lines a
// renderer draws. Both are pure functions; nothing is cached between calls.
//
// Rows are generation tiers: generation g sits at
//
//	y = BaseY + (g-1) * (NodeHeight + VerticalGap)
//
// # Strategies
//
// Horizontal placement is delegated to a [Strategy]. Exactly one is used per
// computation:
//
//   - [Subtree] (default) groups each member with a same-generation spouse
//     into a unit, measures every unit's subtree width bottom-up and centres
//     each unit above its children. The result is a true tree and the whole
//     drawing is centred on x = 0.
//   - [Rows] orders each generation row (siblings together, spouses after
//     their partner) and centres every row independently. Children are not
//     aligned under their parents.
//
// Subtree traversal keeps a processed set, so cyclic parent data terminates
// and every member is placed exactly once. Members that cannot be reached
// from a root are appended to the right as extra roots.
//
// # Connectors
//
// A child of two mutual spouses gets one elbow from the midpoint between the
// parents. A child with one known parent (the father when both are known but
// not married to each other) gets an elbow from that parent's bottom centre:
//
//	  parent
//	     |
//	     +-----+      <- midpoint between parent bottom and child top
//	           |
//	         child
//
// Each spouse pair gets one connector between the facing box edges.
//
// # Usage
//
//	res := layout.Compute(members, layout.Options{Strategy: layout.StrategyRows})
//	for _, c := range layout.Connectors(members, res) {
//	    fmt.Println(c.Kind, c.From, c.To, c.Points)
//	}
package layout
