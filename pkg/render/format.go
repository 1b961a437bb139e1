package render

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatJSON, FormatDOT, FormatGraphviz, FormatPNG, FormatPDF}

// ParseFormat normalises a format name. An empty name is FormatSVG.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f == "" {
		return FormatSVG, nil
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
	return f, nil
}

// Render produces the artifact for format.
func Render(ctx context.Context, s Scene, format string, opts ...SVGOption) ([]byte, error) {
	switch format {
	case FormatSVG:
		return SVG(s, opts...), nil
	case FormatJSON:
		return LayoutJSON(s)
	case FormatDOT:
		return []byte(DOT(s.memberList())), nil
	case FormatGraphviz:
		return GraphvizSVG(ctx, DOT(s.memberList()))
	case FormatPNG:
		return ToPNG(ctx, SVG(s, opts...), PNGScale)
	case FormatPDF:
		return ToPDF(ctx, SVG(s, opts...))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}
