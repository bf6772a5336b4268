package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cerp-labs/vexcol/pkg/vexcol"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	c := &cobra.Command{
		Use:   "watch",
		Short: "Live-poll collection statistics in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := openCollection()
			if err != nil {
				return err
			}
			m := newWatchModel(col, interval)
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}

	c.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return c
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleValue  = lipgloss.NewStyle().Bold(true)
	styleHint   = lipgloss.NewStyle().Faint(true)
)

type statsTickMsg vexcol.Stats

type watchModel struct {
	col      *vexcol.Collection
	interval time.Duration
	spin     spinner.Model
	stats    vexcol.Stats
	quitting bool
}

func newWatchModel(col *vexcol.Collection, interval time.Duration) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	return &watchModel{col: col, interval: interval, spin: s}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.poll())
}

func (m *watchModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return statsTickMsg(m.col.Stats())
	})
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
	case statsTickMsg:
		m.stats = vexcol.Stats(msg)
		return m, m.poll()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return "\n"
	}

	header := styleHeader.Render(m.spin.View() + " vexcol watch")
	lines := []string{
		header,
		"",
		row("active", fmt.Sprint(m.stats.ActiveCount)),
		row("tombstoned", fmt.Sprint(m.stats.TombstoneCount)),
		row("dimensions", fmt.Sprint(m.stats.Dimensions)),
		row("snapshot bytes", fmt.Sprint(m.stats.SnapshotBytes)),
		"",
		styleHint.Render("q to quit"),
	}

	var out string
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", styleLabel.Render(label+":"), styleValue.Render(value))
}
