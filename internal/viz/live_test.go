package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/experiment"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	exp, err := experiment.Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(exp)
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestTogglePID(t *testing.T) {
	m := newTestModel(t)
	if m.exp.Loop.Enabled() {
		t.Fatal("expected PID off at start")
	}
	m = press(m, runes("p"))
	if !m.exp.Loop.Enabled() {
		t.Error("expected PID on after p")
	}
	m = press(m, runes("p"))
	if m.exp.Loop.Enabled() {
		t.Error("expected PID off after second p")
	}
}

func TestTickAdvancesLoop(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}
	if m.last.Step != 1 || len(m.history) != 1 {
		t.Errorf("expected one step recorded, got step %d history %d", m.last.Step, len(m.history))
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.last.Step != 1 {
		t.Errorf("expected paused loop to stay at step 1, got %d", m.last.Step)
	}
}

func TestResetKey(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 5; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	m = press(m, runes("r"))
	if m.last.Theta != math.Pi/2 || m.last.Step != 0 {
		t.Errorf("expected reset to pi/2 at step 0, got %f at %d", m.last.Theta, m.last.Step)
	}
	if len(m.history) != 0 || len(m.trail) != 0 {
		t.Error("expected history cleared")
	}
}

func TestGainKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if math.Abs(m.exp.PID.Kp()-315) > 1e-9 {
		t.Errorf("expected kp 315, got %f", m.exp.PID.Kp())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyDown})
	if math.Abs(m.exp.PID.Ki()-19) > 1e-9 {
		t.Errorf("expected ki 19, got %f", m.exp.PID.Ki())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, runes("0"))
	if m.exp.PID.Kd() != 0 {
		t.Errorf("expected kd 0, got %f", m.exp.PID.Kd())
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.exp.PID.Kd() != 1 {
		t.Errorf("expected zero gain to step to 1, got %f", m.exp.PID.Kd())
	}
}

func TestSetpointKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(m, runes("+"), runes("+"), runes("-"))
	if math.Abs(m.exp.PID.Setpoint()-0.1) > 1e-12 {
		t.Errorf("expected setpoint 0.1, got %f", m.exp.PID.Setpoint())
	}
}

func TestEditGain(t *testing.T) {
	m := newTestModel(t)
	m = press(m, runes("e"), runes("6"), runes("0"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.exp.PID.Kp() != 60 {
		t.Errorf("expected kp 60, got %f", m.exp.PID.Kp())
	}

	m = press(m, runes("e"), runes("x"), runes("y"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.exp.PID.Kp() != 0 {
		t.Errorf("expected malformed input to zero kp, got %f", m.exp.PID.Kp())
	}

	m = press(m, runes("e"), runes("5"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.exp.PID.Kp() != 0 || m.editing {
		t.Error("expected esc to cancel the edit")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 3; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	out := m.View()
	for _, want := range []string{"INVERTED PENDULUM", "PID OFF", "kp", "Torque"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestThemeCycle(t *testing.T) {
	m := newTestModel(t)
	start := m.theme.Name
	for range Themes {
		m = press(m, runes("t"))
	}
	if m.theme.Name != start {
		t.Errorf("expected full cycle back to %s, got %s", start, m.theme.Name)
	}
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("expected fallback to first theme")
	}
}

func TestWithTheme(t *testing.T) {
	m := newTestModel(t).WithTheme("retro")
	if m.theme.Name != "retro" {
		t.Errorf("expected retro, got %s", m.theme.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("expected one name per theme")
	}
}
