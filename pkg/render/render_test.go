package render

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

func couple() []family.Member {
	return []family.Member{
		{ID: "1", Name: "Karl", Gender: "m", Generation: 1, SpouseID: "2", BirthDate: "1901", DeathDate: "1980"},
		{ID: "2", Name: "Anna <Berg>", Gender: "f", Generation: 1, SpouseID: "1", PhotoURL: "https://example.org/anna.jpg"},
		{ID: "3", Name: "Clara", Generation: 2, FatherID: "1", MotherID: "2", Notes: "seamstress"},
	}
}

func sceneFor(t *testing.T, members []family.Member, values viewconfig.Values) Scene {
	t.Helper()
	res := layout.Compute(members, layout.Options{})
	cfg, problems := viewconfig.Parse(values)
	if len(problems) > 0 {
		t.Fatalf("config problems: %v", problems)
	}
	return NewScene(members, res, layout.Connectors(members, res), cfg, 800, 600)
}

func TestNewSceneAutoFits(t *testing.T) {
	s := sceneFor(t, couple(), nil)
	// Bounds 350x260 fit at scale 1; centre (0,130) maps to (400,300).
	if s.View.Tree.Scale != 1 || s.View.Tree.X != 400 || s.View.Tree.Y != 170 {
		t.Errorf("tree transform = %+v, want {400 170 1}", s.View.Tree)
	}
}

func TestNewScenePersistedTransforms(t *testing.T) {
	s := sceneFor(t, couple(), viewconfig.Values{
		viewconfig.KeyTreeX:        "10",
		viewconfig.KeyTreeY:        "20",
		viewconfig.KeyTreeScale:    "0.5",
		viewconfig.KeyTitleX:       "-5",
		viewconfig.KeyOverlayScale: "2",
	})
	if s.View.Tree.X != 10 || s.View.Tree.Y != 20 || s.View.Tree.Scale != 0.5 {
		t.Errorf("tree = %+v", s.View.Tree)
	}
	if s.View.Title.X != -5 || s.View.Title.Scale != 1 {
		t.Errorf("title = %+v", s.View.Title)
	}
	if s.View.Overlay.Scale != 2 {
		t.Errorf("overlay = %+v", s.View.Overlay)
	}
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene(nil, layout.Compute(nil, layout.Options{}), nil, viewconfig.Default(), 0, 0)
	if s.Width() != DefaultWidth || s.Height() != DefaultHeight {
		t.Errorf("size = %vx%v", s.Width(), s.Height())
	}
	if s.View.Tree.Scale != 1 || s.View.Tree.X != 0 {
		t.Errorf("empty tree should keep identity, got %+v", s.View.Tree)
	}
}

func TestSVG(t *testing.T) {
	s := sceneFor(t, couple(), viewconfig.Values{
		viewconfig.KeyTitle:         "Die Familie",
		viewconfig.KeyTitleLines:    `["Die Familie","Berg"]`,
		viewconfig.KeyBackgroundURL: "https://example.org/bg.png",
		viewconfig.KeyTreeX:         "10",
		viewconfig.KeyTreeY:         "20",
		viewconfig.KeyTreeScale:     "0.5",
	})
	svg := string(SVG(s))

	tests := []struct {
		name string
		want string
	}{
		{"root", `viewBox="0 0 800.0 600.0"`},
		{"tree transform", `class="tree" transform="translate(10.00 20.00) scale(0.5000)"`},
		{"background", `href="https://example.org/bg.png"`},
		{"title lines", `>Berg</tspan>`},
		{"escaped name", `Anna &lt;Berg&gt;`},
		{"gender", `class="member gender-female" id="member-2"`},
		{"lifespan", `>1901–1980</text>`},
		{"tooltip notes", "Clara&#xA;seamstress"},
		{"dashed spouse", `stroke-dasharray="6 4"`},
		{"couple connector", `data-from="1" data-partner="2" data-to="3" d="M0.0 40.0 L0.0 130.0 L0.0 180.0"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(svg, tt.want) {
				t.Errorf("SVG missing %q", tt.want)
			}
		})
	}
	if strings.Contains(svg, "<script") {
		t.Error("script embedded without WithHighlight")
	}
	if strings.Contains(svg, "class=\"overlay\"") {
		t.Error("overlay rendered without overlay_url")
	}
}

func TestSVGOptions(t *testing.T) {
	s := sceneFor(t, couple(), nil)

	plain := string(SVG(s, WithoutYears()))
	if strings.Contains(plain, `class="years"`) {
		t.Error("WithoutYears still renders lifespans")
	}

	rich := string(SVG(s, WithHighlight(), WithPhotoLinks()))
	if !strings.Contains(rich, "<script") {
		t.Error("WithHighlight should embed the script")
	}
	if !strings.Contains(rich, `<a href="https://example.org/anna.jpg"`) {
		t.Error("WithPhotoLinks should link the photo")
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Karl", "Karl"},
		{"Maximilian Alexander von Hohenberg-Waldstein", "Maximilian Alex…"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := truncateLabel(tt.label, 160, nameFontSize); got != tt.want {
				t.Errorf("truncateLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutJSON(t *testing.T) {
	s := sceneFor(t, append(couple(), family.Member{ID: "4", Name: "Lost", Generation: 2, FatherID: "99"}), nil)
	data, err := LayoutJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Strategy string `json:"strategy"`
		Nodes    []struct {
			ID       string  `json:"id"`
			X        float64 `json:"x"`
			Gender   string  `json:"gender"`
			Lifespan string  `json:"lifespan"`
		} `json:"nodes"`
		Connectors []layout.Connector `json:"connectors"`
		View       struct {
			Tree struct{ Scale float64 } `json:"tree"`
		} `json:"view"`
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Strategy != layout.StrategySubtree || len(out.Nodes) != 4 {
		t.Fatalf("strategy=%q nodes=%d", out.Strategy, len(out.Nodes))
	}
	if out.Nodes[0].ID != "1" || out.Nodes[0].Gender != "male" || out.Nodes[0].Lifespan != "1901–1980" {
		t.Errorf("first node = %+v", out.Nodes[0])
	}
	if len(out.Connectors) != 2 {
		t.Errorf("connectors = %d, want 2", len(out.Connectors))
	}
	if len(out.Problems) != 1 {
		t.Errorf("problems = %v, want the dangling father", out.Problems)
	}
}

func TestDOT(t *testing.T) {
	dot := DOT(append(couple(), family.Member{ID: "4", Name: "Lost", Generation: 2, FatherID: "99"}))

	for _, want := range []string{
		"digraph G",
		`"1" [label="Karl\n1901–1980"`,
		`{ rank=same; "1"; "2"; }`,
		`{ rank=same; "3"; "4"; }`,
		`"1" -> "3";`,
		`"2" -> "3";`,
		`"1" -> "2" [dir=none, style=dashed, constraint=false];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
	if strings.Contains(dot, `"99"`) {
		t.Error("DOT should drop dangling references")
	}
	if strings.Count(dot, "dir=none") != 1 {
		t.Error("spouse pair should be emitted once")
	}
}

func TestGraphvizSVG(t *testing.T) {
	svg, err := GraphvizSVG(context.Background(), DOT(couple()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("root element not normalised: %.200s", svg)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", FormatSVG, false},
		{" SVG ", FormatSVG, false},
		{"json", FormatJSON, false},
		{"graphviz", FormatGraphviz, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err code = %s", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderDispatch(t *testing.T) {
	s := sceneFor(t, couple(), nil)
	ctx := context.Background()
	for _, f := range []string{FormatSVG, FormatJSON, FormatDOT} {
		data, err := Render(ctx, s, f)
		if err != nil || len(data) == 0 {
			t.Errorf("Render(%s) = %d bytes, %v", f, len(data), err)
		}
	}
	if _, err := Render(ctx, s, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) err = %v", err)
	}
}

func TestConvertWithoutRsvg(t *testing.T) {
	old := rsvgBinary
	rsvgBinary = "kintree-no-such-converter"
	t.Cleanup(func() { rsvgBinary = old })

	s := sceneFor(t, couple(), nil)
	for _, f := range []string{FormatPNG, FormatPDF} {
		_, err := Render(context.Background(), s, f)
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("Render(%s) err = %v, want UNSUPPORTED", f, err)
		}
	}
}
