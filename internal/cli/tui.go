package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// Explorer styles
var (
	canvasEdgeStyle = lipgloss.NewStyle().Foreground(colorDim)
	canvasLabel     = lipgloss.NewStyle().Foreground(colorGray)
	statusBarStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	helpStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// Terminal cells are mapped to view pixels at this size, so a cell is
// roughly twice as tall as it is wide.
const (
	cellWidth  = 10.0
	cellHeight = 20.0

	panStep    = 4 * cellWidth
	zoomFactor = 1.25

	// Lines below the canvas: status, filters, message, help.
	chromeLines = 4
)

const exploreHelp = "←↑↓→ pan  +/- zoom  f fit  space stick/relax  p perturb  r reset  s save  d discard  [ ] snapshot  c clear filters  q quit"

// exploreCommand creates the interactive view explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:               "explore <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "Explore a session interactively in the terminal",
		Long: `Open a view in the terminal and run the force layout live. The canvas shows
the nodes inside the viewport; pan, zoom, pin the layout and save snapshots
from the keyboard.

` + exploreHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			v, err := c.openView(ctx, st, s, args[0], flags)
			if err != nil {
				return err
			}
			defer v.Close()

			return c.runExplorer(ctx, v)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runExplorer(ctx context.Context, v *viewstate.ViewState) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newExploreModel(ctx, v)
	defer m.unsubscribe()

	if err := v.RunLayout(ctx); err != nil {
		return err
	}
	defer v.StopLayout()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(exploreModel); ok && fm.header.Dirty {
		printWarning("Unsaved changes in %s were discarded", describeSnapshot(fm.header))
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive view explorer
// =============================================================================

// redrawMsg tells the model that the view changed.
type redrawMsg struct{}

type exploreModel struct {
	ctx    context.Context
	v      *viewstate.ViewState
	redraw chan struct{}
	unsubs []events.Unsubscribe

	width, height int
	header        viewstate.Header
	canvas        string
	message       string
}

func newExploreModel(ctx context.Context, v *viewstate.ViewState) exploreModel {
	m := exploreModel{
		ctx:    ctx,
		v:      v,
		redraw: make(chan struct{}, 1),
		width:  80,
		height: 24,
	}

	// Handlers run on the publishing goroutine, which may be the program's
	// own Update; they must never block.
	notify := func(events.Event) {
		select {
		case m.redraw <- struct{}{}:
		default:
		}
	}
	for _, k := range []events.Kind{events.HeaderChanged, events.TransformChanged, events.VisibilityChanged, events.AppearanceChanged} {
		m.unsubs = append(m.unsubs, v.Subscribe(k, notify))
	}
	return m
}

func (m exploreModel) unsubscribe() {
	for _, u := range m.unsubs {
		u()
	}
}

func waitForRedraw(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ch:
			return redrawMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m exploreModel) Init() tea.Cmd {
	return waitForRedraw(m.ctx, m.redraw)
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.header = m.v.Header()
			return m, tea.Quit
		}
		m.message = ""
		if err := m.handleKey(msg.String()); err != nil {
			m.message = styleIconError.Render(iconError + " " + errors.UserMessage(err))
		}
		m.refresh()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := max(m.height-chromeLines, 1)
		if err := m.v.SetViewBox(float64(m.width)*cellWidth, float64(rows)*cellHeight); err != nil {
			m.message = styleIconError.Render(iconError + " " + errors.UserMessage(err))
		}
		m.refresh()
	case redrawMsg:
		m.refresh()
		return m, waitForRedraw(m.ctx, m.redraw)
	}
	return m, nil
}

func (m *exploreModel) handleKey(key string) error {
	v := m.v
	switch key {
	case "left", "h":
		return v.PanBy(panStep, 0)
	case "right", "l":
		return v.PanBy(-panStep, 0)
	case "up", "k":
		return v.PanBy(0, panStep)
	case "down", "j":
		return v.PanBy(0, -panStep)
	case "+", "=":
		return v.ZoomAt(m.center(), zoomFactor)
	case "-", "_":
		return v.ZoomAt(m.center(), 1/zoomFactor)
	case "f":
		return v.Fit()
	case " ":
		if v.LayoutState() == layout.Pinned {
			return v.Relax()
		}
		return v.Stick()
	case "p":
		return v.Perturb()
	case "r":
		return v.ResetLayout()
	case "s":
		idx, err := v.Save(m.ctx, "")
		if err != nil {
			return err
		}
		m.message = StyleSuccess.Render(fmt.Sprintf("%s Saved snapshot %d", iconSuccess, idx))
	case "d":
		return v.Discard()
	case "[", "]":
		return m.stepSnapshot(key == "]")
	case "c":
		return v.ClearFilters()
	}
	return nil
}

// errUnsaved refuses snapshot switches that would drop edits.
var errUnsaved = errors.New(errors.ErrCodeInvalidInput, "unsaved changes: save (s) or discard (d) first")

// stepSnapshot applies the next or previous snapshot. Stepping back from the
// first snapshot returns to the session defaults. A dirty view does not
// switch.
func (m *exploreModel) stepSnapshot(forward bool) error {
	if m.v.Dirty() {
		return errUnsaved
	}
	n := len(m.v.Snapshots())
	cur := m.v.ActiveSnapshot()
	next := cur - 1
	if forward {
		next = cur + 1
	}
	if next < snapshot.None || next >= n {
		return nil
	}
	return m.v.ApplySnapshot(next)
}

func (m *exploreModel) center() viewport.Point {
	var vb viewport.Rect
	m.v.Read(func(f viewstate.Frame) { vb = f.ViewBox })
	return vb.Center()
}

func (m *exploreModel) refresh() {
	var sc render.Scene
	m.v.Read(func(f viewstate.Frame) { sc = render.Build(f) })
	m.header = m.v.Header()
	m.canvas = drawCanvas(sc, m.width, max(m.height-chromeLines, 1))
}

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(m.canvas)
	b.WriteString("\n")
	b.WriteString(statusLine(m.header))
	b.WriteString("\n")
	if len(m.header.Filters) > 0 {
		b.WriteString(StyleDim.Render("filters: " + strings.Join(m.header.Filters, " AND ")))
	}
	b.WriteString("\n")
	b.WriteString(m.message)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(truncate(exploreHelp, m.width)))
	return b.String()
}

// statusLine renders the header: session, snapshot with its dirty marker,
// layout state and the node and edge counts at each stage.
func statusLine(h viewstate.Header) string {
	state := h.Layout.String()
	if h.Running {
		state = StyleSuccess.Render(iconActive + " running")
	}
	return fmt.Sprintf("%s %s %s  %s  %s",
		statusBarStyle.Render(h.SessionName),
		saveMark(h.Dirty),
		describeSnapshot(h),
		StyleDim.Render(state),
		StyleDim.Render(fmt.Sprintf("nodes %d/%d/%d  edges %d/%d/%d",
			h.VisibleNodes, h.FilteredNodes, h.Nodes,
			h.VisibleEdges, h.FilteredEdges, h.Edges)))
}

// =============================================================================
// Canvas
// =============================================================================

type cell struct {
	r     rune
	color string
}

// drawCanvas rasterises sc onto a cols x rows character grid. Edges are
// drawn first, then labels, then nodes.
func drawCanvas(sc render.Scene, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
	}
	t := sc.Transform
	if !t.Valid() {
		t = viewport.Identity
	}
	toCell := func(x, y float64) (int, int) {
		p := t.Apply(viewport.Point{X: x, Y: y})
		return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
	}
	set := func(c, r int, ch rune, color string) {
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = cell{r: ch, color: color}
		}
	}

	for _, e := range sc.Edges {
		c1, r1 := toCell(e.X1, e.Y1)
		c2, r2 := toCell(e.X2, e.Y2)
		steps := max(abs(c2-c1), abs(r2-r1))
		for s := 1; s < steps; s++ {
			f := float64(s) / float64(steps)
			c := c1 + int(math.Round(f*float64(c2-c1)))
			r := r1 + int(math.Round(f*float64(r2-r1)))
			set(c, r, '·', "")
		}
	}
	for _, n := range sc.Nodes {
		if n.Label == "" {
			continue
		}
		c, r := toCell(n.X, n.Y)
		for i, ch := range []rune(n.Label) {
			if c+2+i >= cols {
				break
			}
			set(c+2+i, r, ch, "label")
		}
	}
	for _, n := range sc.Nodes {
		c, r := toCell(n.X, n.Y)
		ch := '●'
		if n.Selected {
			ch = '◉'
		}
		set(c, r, ch, n.Color)
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			switch {
			case c.r == 0:
				b.WriteByte(' ')
			case c.color == "":
				b.WriteString(canvasEdgeStyle.Render(string(c.r)))
			case c.color == "label":
				b.WriteString(canvasLabel.Render(string(c.r)))
			default:
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(string(c.r)))
			}
		}
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
