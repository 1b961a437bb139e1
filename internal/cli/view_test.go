package cli

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewconfig"
	"github.com/matzehuels/kintree/pkg/viewport"
)

type patchRecorder struct {
	mu      sync.Mutex
	patches []viewconfig.Patch
}

func (p *patchRecorder) PatchConfig(_ context.Context, patch viewconfig.Patch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.patches = append(p.patches, patch)
	return nil
}

func (p *patchRecorder) last() viewconfig.Patch {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.patches) == 0 {
		return nil
	}
	return p.patches[len(p.patches)-1]
}

func testViewModel(t *testing.T, values viewconfig.Values) (*viewModel, *patchRecorder) {
	t.Helper()
	members := []family.Member{
		{ID: "1", Name: "Karl", Generation: 1, SpouseID: "2", BirthDate: "1901"},
		{ID: "2", Name: "Anna", Generation: 1, SpouseID: "1"},
		{ID: "3", Name: "Clara", Generation: 2, FatherID: "1", MotherID: "2"},
	}
	rec := &patchRecorder{}
	s := viewport.NewSession(0, 0, rec, viewport.WithDebounce(time.Hour))
	t.Cleanup(s.Close)
	res := layout.Compute(members, layout.Options{})
	return newViewModel(s, members, res, values, "k1"), rec
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewModelLoadsOnFirstResize(t *testing.T) {
	m, _ := testViewModel(t, nil)
	if got := m.View(); got != "loading…" {
		t.Errorf("View before size = %q", got)
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !m.loaded {
		t.Fatal("model should load after the first WindowSizeMsg")
	}
	vp := m.session.Viewport()
	if vp.Width != 120*cellWidth || vp.Height != 39*cellHeight {
		t.Errorf("viewport size = %vx%v", vp.Width, vp.Height)
	}
	if vp.Tree.X == 0 && vp.Tree.Y == 0 {
		t.Error("tree should be auto-fitted without a saved offset")
	}

	out := m.View()
	for _, want := range []string{"Karl", "Clara", "3 members"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q:\n%s", want, out)
		}
	}
}

func TestViewModelRestoresSavedView(t *testing.T) {
	m, _ := testViewModel(t, viewconfig.Values{
		viewconfig.KeyTreeX:     "100",
		viewconfig.KeyTreeY:     "50",
		viewconfig.KeyTreeScale: "0.5",
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	vp := m.session.Viewport()
	if vp.Tree.X != 100 || vp.Tree.Y != 50 || vp.Tree.Scale != 0.5 {
		t.Errorf("tree = %+v, want saved transform", vp.Tree)
	}
}

func TestViewModelKeys(t *testing.T) {
	tests := []struct {
		key   string
		check func(before, after viewport.Viewport) bool
	}{
		{"left", func(b, a viewport.Viewport) bool { return a.Tree.X == b.Tree.X+panStep }},
		{"j", func(b, a viewport.Viewport) bool { return a.Tree.Y == b.Tree.Y-panStep }},
		{"+", func(b, a viewport.Viewport) bool { return a.Tree.Scale > b.Tree.Scale }},
		{"-", func(b, a viewport.Viewport) bool { return a.Tree.Scale < b.Tree.Scale }},
		{"d", func(b, a viewport.Viewport) bool { return a.Title.X == b.Title.X+titleStep }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, _ := testViewModel(t, nil)
			m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
			before := m.session.Viewport()
			m.Update(key(tt.key))
			if after := m.session.Viewport(); !tt.check(before, after) {
				t.Errorf("after %q: tree %+v title %+v (before %+v)", tt.key, after.Tree, after.Title, before.Tree)
			}
		})
	}
}

func TestViewModelQuitFlushes(t *testing.T) {
	m, rec := testViewModel(t, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(key("h"))

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if p := rec.last(); p[viewconfig.KeyTreeX] == "" {
		t.Errorf("pan not persisted on quit: %v", p)
	}
}

func TestViewModelReset(t *testing.T) {
	m, rec := testViewModel(t, viewconfig.Values{
		viewconfig.KeyTitle:     "Karlsson",
		viewconfig.KeyTreeX:     "900",
		viewconfig.KeyTreeY:     "900",
		viewconfig.KeyTreeScale: "3",
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(key("r"))

	if _, ok := m.values[viewconfig.KeyTreeX]; ok {
		t.Error("reset should drop the saved tree offset")
	}
	if m.values[viewconfig.KeyTitle] != "Karlsson" {
		t.Error("reset should keep the title")
	}
	if vp := m.session.Viewport(); vp.Tree.X == 900 {
		t.Errorf("tree not refitted: %+v", vp.Tree)
	}
	if m.status != "view reset" {
		t.Errorf("status = %q", m.status)
	}
	if len(rec.patches) == 0 {
		t.Error("reset should be persisted")
	}
}

func TestCanvasBox(t *testing.T) {
	c := newCanvas(12, 4)
	c.box(layout.Point{X: 0, Y: 0}, layout.Point{X: 11 * cellWidth, Y: 3 * cellHeight}, "Maximilian von Bergen", "1901")
	got := c.String()
	want := strings.Join([]string{
		"╭──────────╮",
		"│Maximilia…│",
		"│   1901   │",
		"╰──────────╯",
	}, "\n")
	if got != want {
		t.Errorf("box =\n%s\nwant\n%s", got, want)
	}
}

func TestCanvasClipsAndTrims(t *testing.T) {
	c := newCanvas(5, 2)
	c.text(3, 0, "abcdef")
	c.set(-1, 0, 'x')
	c.line(layout.Point{X: 0, Y: cellHeight}, layout.Point{X: 1e6, Y: cellHeight}, '-')
	want := "   ab\n-----"
	if got := c.String(); got != want {
		t.Errorf("canvas = %q, want %q", got, want)
	}
}
