package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/layout"
	"github.com/matzehuels/patchview/pkg/scene"
	"github.com/matzehuels/patchview/pkg/visualiser"
)

// defaultWatchInterval is the frame period of the terminal view.
const defaultWatchInterval = 50 * time.Millisecond

// watchCommand creates the watch command that follows the graph in the terminal.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		sources  sourceFlags
		layouts  layoutFlags
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live graph in the terminal",
		Long: `Follow the live graph in the terminal.

Runs the same frame pipeline as 'view' without a window and lists the
columns of the latest layout. Press q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			layouts.apply(&cfg)
			if err := sources.apply(&cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Pipeline logs would tear the alternate screen.
			vis, err := newVisualiser(ctx, cfg, log.New(io.Discard))
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(newWatchModel(ctx, vis, interval), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(watchModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}

	sources.register(cmd)
	layouts.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "frame interval")
	return cmd
}

// =============================================================================
// watchModel - Terminal frame loop
// =============================================================================

// frameMsg asks the model to run one frame.
type frameMsg time.Time

// watchModel is the bubbletea model driving a visualiser from the terminal.
type watchModel struct {
	ctx      context.Context
	vis      *visualiser.Visualiser
	interval time.Duration
	last     visualiser.Stats
	err      error
}

func newWatchModel(ctx context.Context, vis *visualiser.Visualiser, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return watchModel{ctx: ctx, vis: vis, interval: interval}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case frameMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		st, err := m.vis.Frame(m.ctx)
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.last = st
		return m, m.tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	s := m.vis.Scene()
	b.WriteString(StyleTitle.Render("patchview"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("frame %d  poll %s", m.last.Frame, m.vis.Poller().State())))
	b.WriteString("\n")

	outputs := 0
	if out, ok := s.GraphOutput(); ok {
		outputs = out.NumInputs()
	}
	b.WriteString(formatStats(s.NodeCount(), s.EdgeCount(), outputs))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleError.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	rows := columnRows(s, m.vis.Placement())
	if len(rows) == 0 {
		b.WriteString(StyleDim.Render("  waiting for a snapshot"))
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Column", "Nodes").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				if col == 0 {
					return StyleHighlight
				}
				return StyleValue
			})
		b.WriteString(t.Render())
	}
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("q quit"))
	return b.String()
}

// columnRows lists the labels of each placed column, nearest the output first.
// Column 0 is the graph output itself and is skipped.
func columnRows(s *scene.Scene, p layout.Placement) [][]string {
	byDepth := make(map[int][]string)
	for _, n := range s.Nodes() {
		depth, ok := p[n.Handle]
		if !ok || n.IsGraphOutput() {
			continue
		}
		byDepth[depth] = append(byDepth[depth], n.Label)
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	slices.Sort(depths)

	rows := make([][]string, 0, len(depths))
	for _, d := range depths {
		rows = append(rows, []string{strconv.Itoa(d), strings.Join(byDepth[d], ", ")})
	}
	return rows
}
