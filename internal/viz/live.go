package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 600

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// Progress is one optimization iteration as seen by the live view. The
// density slice must be a snapshot owned by the message.
type Progress struct {
	Iter       int
	Density    []float64
	Compliance float64
	Volume     float64
}

type doneMsg struct{}

// Model streams optimizer progress into a terminal view. The optimizer
// runs in its own goroutine and feeds the updates channel; closing the
// channel marks the run finished. Quitting cancels the run context.
type Model struct {
	nx, ny  int
	updater string
	updates <-chan Progress
	cancel  context.CancelFunc

	cur        Progress
	compliance []float64
	best       float64
	done       bool
}

func NewModel(nx, ny int, updater string, updates <-chan Progress, cancel context.CancelFunc) Model {
	return Model{
		nx:      nx,
		ny:      ny,
		updater: updater,
		updates: updates,
		cancel:  cancel,
		best:    0,
	}
}

func (m Model) Init() tea.Cmd { return m.wait() }

func (m Model) wait() tea.Cmd {
	return func() tea.Msg {
		p, ok := <-m.updates
		if !ok {
			return doneMsg{}
		}
		return p
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}
	case Progress:
		m.cur = msg
		m.compliance = append(m.compliance, msg.Compliance)
		if len(m.compliance) > historyCapacity {
			m.compliance = m.compliance[1:]
		}
		if m.best == 0 || msg.Compliance < m.best {
			m.best = msg.Compliance
		}
		return m, m.wait()
	case doneMsg:
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	canvas := ""
	if m.cur.Density != nil {
		canvas = canvasStyle.Render(DensityMap(m.cur.Density, m.nx, m.ny))
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.updater)+" OPTIMIZATION") + "\n")
	if m.done {
		s.WriteString("FINISHED\n\n")
	} else {
		s.WriteString("RUNNING\n\n")
	}
	if len(m.compliance) > 1 {
		chart := asciigraph.Plot(m.compliance, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Compliance"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Iteration") + valueStyle.Render(fmt.Sprintf("%d", m.cur.Iter)) + "\n")
	s.WriteString(labelStyle.Render("Compliance") + valueStyle.Render(fmt.Sprintf("%.6g", m.cur.Compliance)) + "\n")
	s.WriteString(labelStyle.Render("Best") + valueStyle.Render(fmt.Sprintf("%.6g", m.best)) + "\n")
	s.WriteString(labelStyle.Render("Volume") + valueStyle.Render(fmt.Sprintf("%.4f", m.cur.Volume)) + "\n")
	s.WriteString(labelStyle.Render("Mesh") + valueStyle.Render(fmt.Sprintf("%dx%d", m.nx, m.ny)) + "\n")
	s.WriteString(helpStyle.Render("\n─────────────────\nQ:Stop and save"))
	stats := statsStyle.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, stats)
}
