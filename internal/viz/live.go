package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/experiment"
	"github.com/san-kum/invpend/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	trailLength     = 40
	setpointStep    = 0.1
)

var gainKeys = []string{"kp", "ki", "kd"}

type TickMsg time.Time

// Model is the Bubble Tea host. It owns no control state of its own: every
// read and write goes through the experiment's loop.
type Model struct {
	exp      *experiment.Experiment
	interval time.Duration

	canvas  *Canvas
	trail   []struct{ x, y int }
	history []float64
	last    sim.Sample

	running  bool
	selected int
	editing  bool
	input    string
	status   string

	theme Theme
	style styles
}

func NewModel(exp *experiment.Experiment) Model {
	theme := Themes[0]
	return Model{
		exp:      exp,
		interval: time.Duration(exp.Loop.Dt() * float64(time.Second)),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		trail:    make([]struct{ x, y int }, 0, trailLength),
		history:  make([]float64, 0, historyCapacity),
		last:     exp.Loop.Snapshot(),
		running:  true,
		theme:    theme,
		style:    newStyles(theme),
	}
}

// WithTheme selects a color theme by name; see ThemeNames.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.style = newStyles(m.theme)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			m.handleEdit(msg)
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "p":
			on := m.exp.Loop.Toggle()
			m.status = "PID " + onOff(on)
		case "r":
			m.exp.Loop.Reset()
			m.trail = m.trail[:0]
			m.history = m.history[:0]
			m.status = "reset"
		case "tab":
			m.selected = (m.selected + 1) % len(gainKeys)
		case "up", "k":
			m.scaleGain(1.05)
		case "down", "j":
			m.scaleGain(0.95)
		case "0":
			m.setParam(gainKeys[m.selected], 0)
		case "+", "=":
			m.setParam("setpoint", m.exp.Params()["setpoint"]+setpointStep)
		case "-", "_":
			m.setParam("setpoint", m.exp.Params()["setpoint"]-setpointStep)
		case "e":
			m.editing = true
			m.input = ""
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.style = newStyles(m.theme)
		}
		m.last = m.exp.Loop.Snapshot()
	case TickMsg:
		if m.running {
			m.record(m.exp.Loop.Tick())
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleEdit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.setParam(gainKeys[m.selected], config.ParseFloatOrZero(m.input))
		m.editing = false
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
}

// scaleGain multiplies the selected gain; a zero gain steps up to 1 so it
// can be grown again.
func (m *Model) scaleGain(factor float64) {
	key := gainKeys[m.selected]
	val := m.exp.Params()[key]
	if val == 0 && factor > 1 {
		m.setParam(key, 1)
		return
	}
	m.setParam(key, val*factor)
}

func (m *Model) setParam(key string, v float64) {
	if err := m.exp.SetParam(key, v); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s = %.3f", key, v)
}

func (m *Model) record(s sim.Sample) {
	m.last = s
	m.history = append(m.history, s.Theta*180/math.Pi)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if x, y, ok := m.bob(s.Theta); ok {
		m.trail = append(m.trail, struct{ x, y int }{x, y})
		if len(m.trail) > trailLength {
			m.trail = m.trail[1:]
		}
	}
}

// bob maps theta to canvas dots with the pivot at the center; theta 0 points
// up and positive theta swings to the right.
func (m *Model) bob(theta float64) (x, y int, ok bool) {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return 0, 0, false
	}
	cw, ch := m.canvas.Dots()
	length := float64(min(cw, ch)/2 - 4)
	x = cw/2 + int(math.Round(length*math.Sin(theta)))
	y = ch/2 - int(math.Round(length*math.Cos(theta)))
	return x, y, true
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.canvas.Dots()
	cx, cy := cw/2, ch/2
	m.canvas.DrawLine(cx-16, cy+1, cx+16, cy+1)

	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}
	if bx, by, ok := m.bob(m.last.Theta); ok {
		m.canvas.DrawLine(cx, cy, bx, by)
		m.canvas.Disc(bx, by, 2)
	}
}

func (m Model) View() string {
	m.draw()
	st := m.style
	s := m.last
	params := m.exp.Params()

	var b strings.Builder
	b.WriteString(st.header.Render("INVERTED PENDULUM") + "\n")

	run := st.on.Render("RUNNING")
	if !m.running {
		run = st.warn.Render("PAUSED")
	}
	pid := st.off.Render("PID OFF")
	if s.Enabled {
		pid = st.on.Render("PID ON")
	}
	b.WriteString(run + "  " + pid + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("angle (deg)"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", s.Time))
	row("Angle", fmt.Sprintf("%.2f°", s.Theta*180/math.Pi))
	row("Velocity", fmt.Sprintf("%.3f rad/s", s.Omega))
	row("Torque", fmt.Sprintf("%.2f N·m", s.Tau))
	b.WriteString(st.label.Render("") + st.gauge(s.Tau, m.exp.PID.MaxOutput(), 20) + "\n")
	row("Setpoint", fmt.Sprintf("%.2f rad", params["setpoint"]))

	b.WriteString("\nGAINS\n")
	for i, k := range gainKeys {
		line := fmt.Sprintf("%-4s %10.3f", k, params[k])
		if i == m.selected {
			if m.editing {
				line = fmt.Sprintf("%-4s %10s▏", k, m.input)
			}
			b.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.status) + "\n")
	}
	b.WriteString(st.help.Render("P:PID R:Reset SP:Pause Q:Quit\nTab:Gain ↑↓:±5% 0:Zero E:Edit\n+/-:Setpoint T:Theme"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(m.canvas.String()),
		st.stats.Render(b.String()))
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
