package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/viewconfig"
	"github.com/matzehuels/kintree/pkg/viewport"
)

// Viewer key steps in screen units.
const (
	panStep   = 4 * cellWidth
	titleStep = cellHeight
	zoomStep  = 1.2
)

var (
	viewerStatusStyle = lipgloss.NewStyle().Foreground(colorDim)
	viewerTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		input    string
		debounce time.Duration
		flags    layoutFlags
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the tree in the terminal",
		Long: `Browse the tree in the terminal.

Keys: arrows or hjkl pan, + and - zoom, f fits the tree, r resets the saved
view, w/a/s/d move the title, q quits. Position and zoom are saved to the
store shortly after you stop moving, so 'render' and the HTTP API start from
the same view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), input, debounce, c.pipelineOptions(cmd.Context(), flags))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "member file (.json, .yaml); the view is not saved")
	cmd.Flags().DurationVar(&debounce, "debounce", viewport.DefaultDebounce, "quiet period before the view is saved")
	flags.register(cmd)
	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, debounce time.Duration, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	var (
		members   []family.Member
		values    viewconfig.Values
		persister viewport.Persister
	)
	if input != "" {
		if members, values, err = readInput(input); err != nil {
			return err
		}
	} else {
		st, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if members, err = st.ListMembers(ctx); err != nil {
			return err
		}
		if values, err = st.Config(ctx); err != nil {
			return err
		}
		persister = st
	}

	res, err := runner.Layout(ctx, members, opts)
	if err != nil {
		return err
	}

	session := viewport.NewSession(0, 0, persister,
		viewport.WithDebounce(debounce),
		viewport.WithLogger(loggerFromContext(ctx)))
	defer session.Close()

	m := newViewModel(session, members, res, values, pipeline.MemberKey(members))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// viewModel is the bubbletea model of the terminal viewer.
type viewModel struct {
	session   *viewport.Session
	members   map[family.ID]family.Member
	res       layout.Result
	conns     []layout.Connector
	values    viewconfig.Values
	memberKey string

	cols, rows int
	loaded     bool
	status     string
}

func newViewModel(s *viewport.Session, members []family.Member, res layout.Result, values viewconfig.Values, memberKey string) *viewModel {
	byID := make(map[family.ID]family.Member, len(members))
	for _, m := range members {
		m = m.Normalized()
		byID[m.ID] = m
	}
	return &viewModel{
		session:   s,
		members:   byID,
		res:       res,
		conns:     layout.Connectors(members, res),
		values:    values,
		memberKey: memberKey,
	}
}

func (m *viewModel) Init() tea.Cmd { return nil }

// load restores the saved view, fitting the tree when none is saved.
func (m *viewModel) load() {
	cfg, _ := viewconfig.Parse(m.values)
	m.session.Load(cfg, m.res.Bounds, m.memberKey)
	m.loaded = true
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.session.Resize(float64(m.cols)*cellWidth, float64(m.canvasRows())*cellHeight)
		if !m.loaded {
			m.load()
		}
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.session.EndDrag()
			return m, tea.Quit
		case "left", "h":
			m.session.PanBy(panStep, 0)
		case "right", "l":
			m.session.PanBy(-panStep, 0)
		case "up", "k":
			m.session.PanBy(0, panStep)
		case "down", "j":
			m.session.PanBy(0, -panStep)
		case "+", "=":
			m.session.Zoom(zoomStep, nil)
		case "-", "_":
			m.session.Zoom(1/zoomStep, nil)
		case "w":
			m.session.MoveTitle(0, -titleStep)
		case "s":
			m.session.MoveTitle(0, titleStep)
		case "a":
			m.session.MoveTitle(-titleStep, 0)
		case "d":
			m.session.MoveTitle(titleStep, 0)
		case "f":
			if err := m.session.FitNow(); err != nil {
				m.status = errors.UserMessage(err)
			}
		case "r":
			m.session.Reset()
			m.values = m.values.Apply(viewconfig.ResetViewPatch())
			m.load()
			m.status = "view reset"
		}
	}
	return m, nil
}

func (m *viewModel) canvasRows() int { return max(m.rows-1, 1) }

func (m *viewModel) View() string {
	if !m.loaded {
		return "loading…"
	}
	vp := m.session.Viewport()
	cv := newCanvas(m.cols, m.canvasRows())

	cfg, _ := viewconfig.Parse(m.values)
	drawTree(cv, vp, m.res.Boxes(), m.conns, m.label, cfg.TitleLines)

	status := fmt.Sprintf("%d members · zoom %.0f%% · ←↑↓→ pan  +/- zoom  f fit  r reset  wasd title  q quit",
		m.res.Len(), vp.Tree.Scale*100)
	if m.status != "" {
		status = m.status + " · " + status
	}
	out := cv.String()
	for _, l := range cfg.TitleLines {
		if l != "" {
			out = strings.Replace(out, l, viewerTitleStyle.Render(l), 1)
		}
	}
	return out + "\n" + viewerStatusStyle.Render(status)
}

func (m *viewModel) label(b layout.Box) []string {
	mem, ok := m.members[b.ID]
	if !ok {
		return []string{b.ID.String()}
	}
	lines := []string{mem.Name}
	if ls := mem.Lifespan(); ls != "" {
		lines = append(lines, ls)
	}
	return lines
}
