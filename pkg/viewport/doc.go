// Package viewport holds the pan/zoom state of a family tree view.
//
// A [Viewport] is pure arithmetic over three [Transform] layers: the tree
// group, the title block and an overlay image. A transform maps tree space to
// screen space:
//
//	screen = tree * Scale + (X, Y)
//
// Zooming keeps the anchor point fixed on screen:
//
//	offset' = anchor - (anchor - offset) * factor
//
// [Viewport.AutoFit] picks the largest scale (never above 1) that fits the
// layout bounds inside the viewport minus padding, and centres them.
//
// A [Session] wraps a Viewport with persistence. Interaction methods update
// the viewport and schedule a flush through a [Debouncer]; the flush sends a
// viewconfig.Patch holding only the changed transform keys to a [Persister].
// EndDrag flushes immediately. Reset clears every persisted transform and
// makes the next Load auto-fit again.
package viewport
