package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewport"
)

const (
	colorBackground = "#faf7f0"
	colorStroke     = "#4a4a4a"
	colorConnector  = "#6b6b6b"
	colorText       = "#222222"
	colorYears      = "#666666"
	titleMarginTop  = 24.0
	boxRadius       = 8.0
)

var genderFill = map[family.Gender]string{
	family.GenderMale:   "#dbe8f6",
	family.GenderFemale: "#f8dde6",
	family.GenderOther:  "#e9e9e9",
}

const relativesCSS = `
    .member rect { transition: stroke-width 0.2s ease; }
    .member.highlight rect { stroke-width: 3; }
    .member.dim { opacity: 0.35; }
    .connector.dim { opacity: 0.2; }`

const relativesJS = `
    function related(id) {
      const ids = new Set([id]);
      document.querySelectorAll('.connector').forEach(c => {
        const ends = [c.dataset.from, c.dataset.partner, c.dataset.to].filter(Boolean);
        if (ends.includes(id)) ends.forEach(e => ids.add(e));
      });
      return ids;
    }
    function highlight(id) {
      const ids = related(id);
      document.querySelectorAll('.member').forEach(m => {
        m.classList.toggle('highlight', ids.has(m.dataset.member));
        m.classList.toggle('dim', !ids.has(m.dataset.member));
      });
      document.querySelectorAll('.connector').forEach(c => {
        const ends = [c.dataset.from, c.dataset.partner, c.dataset.to].filter(Boolean);
        c.classList.toggle('dim', !ends.some(e => e === id));
      });
    }
    function clearHighlight() {
      document.querySelectorAll('.member, .connector').forEach(el => el.classList.remove('highlight', 'dim'));
    }
    document.querySelectorAll('.member').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.member));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	years     bool
	highlight bool
	links     bool
}

// WithoutYears omits the lifespan line under each name.
func WithoutYears() SVGOption { return func(r *svgRenderer) { r.years = false } }

// WithHighlight embeds a script that highlights a member's relatives on hover.
func WithHighlight() SVGOption { return func(r *svgRenderer) { r.highlight = true } }

// WithPhotoLinks links member boxes to their photo URL.
func WithPhotoLinks() SVGOption { return func(r *svgRenderer) { r.links = true } }

// SVG renders the scene as a standalone SVG document.
func SVG(s Scene, opts ...SVGOption) []byte {
	r := svgRenderer{years: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := s.Width(), s.Height()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)

	renderBackground(&buf, s)
	fmt.Fprintf(&buf, `  <g class="tree" transform="%s">`+"\n", transformAttr(s.View.Tree))
	for _, c := range s.Connectors {
		renderConnector(&buf, c)
	}
	for _, b := range s.Boxes() {
		r.renderMember(&buf, b, s.Member(b.ID))
	}
	buf.WriteString("  </g>\n")
	renderOverlay(&buf, s)
	renderTitle(&buf, s)

	if r.highlight {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", relativesCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", relativesJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func transformAttr(t viewport.Transform) string {
	if t.Scale == 1 {
		return fmt.Sprintf("translate(%.2f %.2f)", t.X, t.Y)
	}
	return fmt.Sprintf("translate(%.2f %.2f) scale(%.4f)", t.X, t.Y, t.Scale)
}

func renderBackground(buf *bytes.Buffer, s Scene) {
	fmt.Fprintf(buf, `  <rect class="background" x="0" y="0" width="%.0f" height="%.0f" fill="%s"/>`+"\n",
		s.Width(), s.Height(), colorBackground)
	if u := s.Config.BackgroundURL; u != "" {
		fmt.Fprintf(buf, `  <image class="background-image" href="%s" x="0" y="0" width="%.0f" height="%.0f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			escapeXML(u), s.Width(), s.Height())
	}
}

func renderOverlay(buf *bytes.Buffer, s Scene) {
	u := s.Config.OverlayURL
	if u == "" {
		return
	}
	fmt.Fprintf(buf, `  <image class="overlay" href="%s" x="0" y="0" width="%.0f" height="%.0f" transform="%s" preserveAspectRatio="xMidYMid meet"/>`+"\n",
		escapeXML(u), s.Width(), s.Height(), transformAttr(s.View.Overlay))
}

func renderTitle(buf *bytes.Buffer, s Scene) {
	lines := s.Config.TitleLines
	if len(lines) == 0 {
		return
	}
	size := s.Config.TitleFontSize
	x := s.Width()/2 + s.View.Title.X
	y := titleMarginTop + size + s.View.Title.Y
	fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-size="%.1f" font-family="%s" fill="%s">`,
		x, y, size, escapeXML(s.Config.TitleFontFamily), colorText)
	for i, line := range lines {
		dy := 0.0
		if i > 0 {
			dy = size * 1.2
		}
		fmt.Fprintf(buf, `<tspan x="%.1f" dy="%.1f">%s</tspan>`, x, dy, escapeXML(line))
	}
	buf.WriteString("</text>\n")
}

func renderConnector(buf *bytes.Buffer, c layout.Connector) {
	if len(c.Points) < 2 {
		return
	}
	var d strings.Builder
	for i, p := range c.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%.1f %.1f ", cmd, p.X, p.Y)
	}
	dash := ""
	if c.Kind == layout.KindSpousal {
		dash = ` stroke-dasharray="6 4"`
	}
	partner := ""
	if !c.Partner.IsZero() {
		partner = fmt.Sprintf(` data-partner="%s"`, escapeXML(c.Partner.String()))
	}
	fmt.Fprintf(buf, `    <path class="connector %s" data-from="%s"%s data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="2"%s/>`+"\n",
		c.Kind, escapeXML(c.From.String()), partner, escapeXML(c.To.String()),
		strings.TrimSpace(d.String()), colorConnector, dash)
}

func (r svgRenderer) renderMember(buf *bytes.Buffer, b layout.Box, m family.Member) {
	url := ""
	if r.links {
		url = m.PhotoURL
	}
	wrapURL(buf, url, func() {
		fmt.Fprintf(buf, `    <g class="member gender-%s" id="member-%s" data-member="%s">`+"\n",
			m.Gender, escapeXML(b.ID.String()), escapeXML(b.ID.String()))
		fmt.Fprintf(buf, `      <title>%s</title>`+"\n", escapeXML(tooltip(m)))
		fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
			b.Left, b.Top, b.Width(), b.Height(), boxRadius, fill(m.Gender), colorStroke)

		years := ""
		if r.years {
			years = m.Lifespan()
		}
		nameY := b.CenterY() + nameFontSize/3
		if years != "" {
			nameY = b.CenterY() - 2
		}
		fmt.Fprintf(buf, `      <text class="name" x="%.1f" y="%.1f" text-anchor="middle" font-size="%.0f" fill="%s">%s</text>`+"\n",
			b.CenterX(), nameY, nameFontSize, colorText, escapeXML(truncateLabel(m.Name, b.Width(), nameFontSize)))
		if years != "" {
			fmt.Fprintf(buf, `      <text class="years" x="%.1f" y="%.1f" text-anchor="middle" font-size="%.0f" fill="%s">%s</text>`+"\n",
				b.CenterX(), b.CenterY()+yearsFontSize+2, yearsFontSize, colorYears, escapeXML(years))
		}
		buf.WriteString("    </g>\n")
	})
}

func fill(g family.Gender) string {
	if c, ok := genderFill[g]; ok {
		return c
	}
	return genderFill[family.GenderOther]
}

func tooltip(m family.Member) string {
	parts := []string{m.Name}
	if ls := m.Lifespan(); ls != "" {
		parts = append(parts, ls)
	}
	if m.Notes != "" {
		parts = append(parts, m.Notes)
	}
	return strings.Join(parts, "\n")
}
