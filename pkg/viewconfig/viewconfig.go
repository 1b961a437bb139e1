// Package viewconfig models the persisted presentation settings of a family
// tree view: title block, background and overlay images, and the saved
// transforms of the tree, title and overlay.
//
// Settings are stored as a flat string map ([Values]). Writers send a
// [Patch] holding only the keys they change; an empty value deletes a key.
// Keys outside the accepted set are dropped by [Patch.Sanitize].
//
// [Parse] is tolerant: malformed values never fail the load. Each one is
// reported as an errors.ErrCodeMalformedConfig problem and replaced by its
// default (single-line title, absent transform).
package viewconfig

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Accepted keys.
const (
	KeyTitle           = "title"
	KeyTitleLines      = "title_lines"
	KeyTitleFontSize   = "title_font_size"
	KeyTitleFontFamily = "title_font_family"
	KeyBackgroundURL   = "background_url"
	KeyOverlayURL      = "overlay_url"
	KeyOverlayX        = "overlay_x"
	KeyOverlayY        = "overlay_y"
	KeyOverlayScale    = "overlay_scale"
	KeyTreeX           = "tree_x"
	KeyTreeY           = "tree_y"
	KeyTreeScale       = "tree_scale"
	KeyTitleX          = "title_x"
	KeyTitleY          = "title_y"
)

// AcceptedKeys lists every key a Patch may carry.
var AcceptedKeys = []string{
	KeyTitle, KeyTitleLines, KeyTitleFontSize, KeyTitleFontFamily,
	KeyBackgroundURL, KeyOverlayURL,
	KeyOverlayX, KeyOverlayY, KeyOverlayScale,
	KeyTreeX, KeyTreeY, KeyTreeScale,
	KeyTitleX, KeyTitleY,
}

// TransformKeys are the keys written by viewport interaction.
var TransformKeys = []string{
	KeyTreeX, KeyTreeY, KeyTreeScale,
	KeyTitleX, KeyTitleY,
	KeyOverlayX, KeyOverlayY, KeyOverlayScale,
}

// Defaults used when a key is absent or malformed.
const (
	DefaultTitle           = "Family Tree"
	DefaultTitleFontSize   = 32.0
	DefaultTitleFontFamily = "Georgia, serif"
)

// IsAccepted reports whether key belongs to the accepted set.
func IsAccepted(key string) bool { return slices.Contains(AcceptedKeys, key) }

// Values is the stored key/value form of a view configuration.
type Values map[string]string

// Apply returns a copy of v with p merged in. Empty patch values delete the
// key. Unknown keys in p are ignored.
func (v Values) Apply(p Patch) Values {
	out := maps.Clone(v)
	if out == nil {
		out = make(Values)
	}
	for k, val := range p.Sanitize() {
		if val == "" {
			delete(out, k)
		} else {
			out[k] = val
		}
	}
	return out
}

// Keys returns the keys of v in sorted order.
func (v Values) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// Patch is a partial update of Values. An empty value deletes the key.
type Patch map[string]string

// Sanitize returns the subset of p whose keys are accepted. Values are
// trimmed.
func (p Patch) Sanitize() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		if IsAccepted(k) {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

// ResetViewPatch deletes every persisted transform.
func ResetViewPatch() Patch {
	p := make(Patch, len(TransformKeys))
	for _, k := range TransformKeys {
		p[k] = ""
	}
	return p
}

// Config is the parsed view configuration. Transform fields are nil when the
// value is absent or malformed.
type Config struct {
	Title           string   `json:"title"`
	TitleLines      []string `json:"title_lines"`
	TitleFontSize   float64  `json:"title_font_size"`
	TitleFontFamily string   `json:"title_font_family"`
	BackgroundURL   string   `json:"background_url,omitempty"`
	OverlayURL      string   `json:"overlay_url,omitempty"`

	TreeX     *float64 `json:"tree_x,omitempty"`
	TreeY     *float64 `json:"tree_y,omitempty"`
	TreeScale *float64 `json:"tree_scale,omitempty"`

	TitleX *float64 `json:"title_x,omitempty"`
	TitleY *float64 `json:"title_y,omitempty"`

	OverlayX     *float64 `json:"overlay_x,omitempty"`
	OverlayY     *float64 `json:"overlay_y,omitempty"`
	OverlayScale *float64 `json:"overlay_scale,omitempty"`
}

// HasTreeOffset reports whether a tree offset was persisted.
func (c Config) HasTreeOffset() bool { return c.TreeX != nil && c.TreeY != nil }

// Default returns the configuration used when nothing is stored.
func Default() Config {
	return Config{
		Title:           DefaultTitle,
		TitleLines:      []string{DefaultTitle},
		TitleFontSize:   DefaultTitleFontSize,
		TitleFontFamily: DefaultTitleFontFamily,
	}
}

// Parse decodes stored values. It never fails; every malformed value is
// returned as a MALFORMED_CONFIG problem and replaced by its default.
func Parse(v Values) (Config, []error) {
	c := Default()
	var problems []error
	bad := func(key, format string, args ...any) {
		problems = append(problems, errors.New(errors.ErrCodeMalformedConfig, "%s: "+format, append([]any{key}, args...)...))
	}

	if t := strings.TrimSpace(v[KeyTitle]); t != "" {
		c.Title = t
	}
	c.TitleLines = []string{c.Title}
	if raw, ok := v[KeyTitleLines]; ok && raw != "" {
		var lines []string
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			bad(KeyTitleLines, "not a JSON string array")
		} else if lines = nonEmpty(lines); len(lines) > 0 {
			c.TitleLines = lines
		}
	}

	if raw, ok := v[KeyTitleFontSize]; ok && raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err != nil || !finite(f) || f <= 0 {
			bad(KeyTitleFontSize, "invalid font size %q", raw)
		} else {
			c.TitleFontSize = f
		}
	}
	if f := strings.TrimSpace(v[KeyTitleFontFamily]); f != "" {
		c.TitleFontFamily = f
	}

	for _, u := range []struct {
		key string
		dst *string
	}{
		{KeyBackgroundURL, &c.BackgroundURL},
		{KeyOverlayURL, &c.OverlayURL},
	} {
		raw := v[u.key]
		if err := errors.ValidateURL(raw); err != nil {
			bad(u.key, "%s", errors.UserMessage(err))
			continue
		}
		*u.dst = raw
	}

	floats := []struct {
		key   string
		dst   **float64
		scale bool
	}{
		{KeyTreeX, &c.TreeX, false},
		{KeyTreeY, &c.TreeY, false},
		{KeyTreeScale, &c.TreeScale, true},
		{KeyTitleX, &c.TitleX, false},
		{KeyTitleY, &c.TitleY, false},
		{KeyOverlayX, &c.OverlayX, false},
		{KeyOverlayY, &c.OverlayY, false},
		{KeyOverlayScale, &c.OverlayScale, true},
	}
	for _, fl := range floats {
		raw, ok := v[fl.key]
		if !ok || raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || !finite(f) || (fl.scale && f <= 0) {
			bad(fl.key, "invalid number %q", raw)
			continue
		}
		*fl.dst = &f
	}
	return c, problems
}

// Values encodes c back to its stored form. Absent transforms are omitted.
func (c Config) Values() Values {
	v := Values{
		KeyTitle:           c.Title,
		KeyTitleFontSize:   FormatFloat(c.TitleFontSize),
		KeyTitleFontFamily: c.TitleFontFamily,
	}
	if len(c.TitleLines) > 0 {
		data, _ := json.Marshal(c.TitleLines)
		v[KeyTitleLines] = string(data)
	}
	if c.BackgroundURL != "" {
		v[KeyBackgroundURL] = c.BackgroundURL
	}
	if c.OverlayURL != "" {
		v[KeyOverlayURL] = c.OverlayURL
	}
	for key, f := range map[string]*float64{
		KeyTreeX: c.TreeX, KeyTreeY: c.TreeY, KeyTreeScale: c.TreeScale,
		KeyTitleX: c.TitleX, KeyTitleY: c.TitleY,
		KeyOverlayX: c.OverlayX, KeyOverlayY: c.OverlayY, KeyOverlayScale: c.OverlayScale,
	} {
		if f != nil {
			v[key] = FormatFloat(*f)
		}
	}
	return v
}

// FormatFloat renders a float for storage, rounded to three decimals.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}

// SplitTitle turns a free-text title into display lines, one per non-empty
// line of input.
func SplitTitle(title string) []string {
	return nonEmpty(strings.Split(title, "\n"))
}

func nonEmpty(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
