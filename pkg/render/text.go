package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode/utf8"
)

const (
	nameFontSize  = 15.0
	yearsFontSize = 12.0
	fontCharWidth = 0.55
	fontWidthFill = 0.85
)

// truncateLabel shortens label so it fits a box of width w at fontSize.
func truncateLabel(label string, w, fontSize float64) string {
	maxChars := max(3, int(w*fontWidthFill/(fontSize*fontCharWidth)))
	if utf8.RuneCountInString(label) <= maxChars {
		return label
	}
	runes := []rune(label)
	return string(runes[:maxChars-1]) + "…"
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// wrapURL wraps the output of fn in a link when url is set.
func wrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `  <a href="%s" target="_blank">`, escapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("</a>\n")
	}
}
