package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/family"
)

// DOT converts members to a Graphviz digraph: one rank per generation,
// descent edges from each resolvable parent, undirected dashed spouse edges.
// Dangling references are dropped.
func DOT(members []family.Member) string {
	x := family.NewIndex(members)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"" + colorConnector + "\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	rows := make(map[int][]family.ID)
	var gens []int
	for _, m := range x.Members() {
		label := m.Name
		if ls := m.Lifespan(); ls != "" {
			label += "\n" + ls
		}
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", m.ID, label, fill(m.Gender))
		if _, ok := rows[m.Gen()]; !ok {
			gens = append(gens, m.Gen())
		}
		rows[m.Gen()] = append(rows[m.Gen()], m.ID)
	}

	buf.WriteString("\n")
	slices.Sort(gens)
	for _, g := range gens {
		buf.WriteString("  { rank=same;")
		for _, id := range rows[g] {
			fmt.Fprintf(&buf, " %q;", id)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	seen := make(map[[2]family.ID]bool)
	for _, id := range x.IDs() {
		if f, ok := x.Father(id); ok {
			fmt.Fprintf(&buf, "  %q -> %q;\n", f.ID, id)
		}
		if m, ok := x.Mother(id); ok {
			fmt.Fprintf(&buf, "  %q -> %q;\n", m.ID, id)
		}
		if s, ok := x.Spouse(id); ok {
			key := [2]family.ID{id, s.ID}
			if family.CompareIDs(s.ID, id) < 0 {
				key = [2]family.ID{s.ID, id}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", id, s.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// GraphvizSVG renders a DOT graph to SVG using Graphviz.
func GraphvizSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales like the native renderer's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
