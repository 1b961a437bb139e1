// Package pkg provides the core libraries for kintree family tree layout.
//
// # Overview
//
// Kintree places the members of a family on a plane: one row per generation,
// spouses side by side, children centred under their parents. The result can
// be panned and zoomed through a viewport whose transforms are persisted next
// to the members. The pkg directory is organized into these areas:
//
//  1. [family] - Member records, reference recovery and the lookup index
//  2. [layout] - Row and subtree placement, bounds and connector routing
//  3. [viewport] - Screen transforms, auto-fit and debounced persistence
//  4. [viewconfig] - The key/value view settings and their typed form
//  5. [render] - SVG, layout JSON, DOT and Graphviz output
//  6. [pipeline] - Orchestration (layout → render) with caching
//  7. [store] - Member and view settings persistence
//
// # Architecture
//
// The typical data flow through kintree:
//
//	Store or member file
//	         ↓
//	    [family] package (normalise, recover references)
//	         ↓
//	    [layout] package (positions + connectors)
//	         ↓
//	    [viewport] package (restore or auto-fit transforms)
//	         ↓
//	    [render] package (SVG/JSON/DOT/PNG/PDF)
//
// # Quick Start
//
// Lay out a couple and their child and render the tree:
//
//	members := []family.Member{
//	    {ID: "1", Name: "Karl", Generation: 1, SpouseID: "2"},
//	    {ID: "2", Name: "Anna", Generation: 1, SpouseID: "1"},
//	    {ID: "3", Name: "Clara", Generation: 2, FatherID: "1", MotherID: "2"},
//	}
//	res := layout.Compute(members, layout.Options{})
//	cfg, _ := viewconfig.Parse(nil)
//	scene := render.NewScene(members, res, layout.Connectors(members, res), cfg, 1200, 800)
//	svg := render.SVG(scene)
//
// Most callers go through [pipeline] instead, which adds caching and works
// directly on a [store]:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.ExecuteStore(ctx, st, pipeline.Options{Formats: []string{"svg"}})
//
// # Supporting Packages
//
// [io] - JSON and YAML import/export of members and view settings.
//
// [cache] - Layout and artifact cache with file, Redis and null backends.
//
// [observability] - Hooks for pipeline, cache and HTTP events, plus the
// Prometheus collectors that implement them.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [viewport]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/viewport
// [viewconfig]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/viewconfig
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pipeline
// [store]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/store
// [io]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/buildinfo
package pkg
