package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/experiment"
)

const recoverYAML = `
name: recover
description: fall for a bit, then catch it
preset: pd
steps:
  - pid: false
    run: 0.2
  - pid: true
    set: {kp: 60, kd: 20}
    run: 15
  - reset: true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, recoverYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "recover" || sc.Preset != "pd" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].PID == nil || !*sc.Steps[1].PID {
		t.Error("expected step 2 to enable pid")
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, recoverYAML))
	if err != nil {
		t.Fatal(err)
	}
	exp, err := experiment.Build(config.GetPreset("pendulum", sc.Preset))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), exp, sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Final.Theta <= math.Pi/2 {
		t.Errorf("expected the pendulum to fall while off, got %f", results[0].Final.Theta)
	}
	if results[0].Metrics["control_effort"] != 0 {
		t.Error("expected no effort while pid is off")
	}
	if math.Abs(results[1].Final.Theta) > 0.01 {
		t.Errorf("expected pid to catch the pendulum, got %f", results[1].Final.Theta)
	}
	if results[1].Action != "pid on, kd=20, kp=60, run 15s" {
		t.Errorf("unexpected action %q", results[1].Action)
	}
	if results[2].Final.Theta != math.Pi/2 || results[2].Final.Step != 0 {
		t.Errorf("expected reset state, got %+v", results[2].Final)
	}
}

func TestRunScenarioBadParam(t *testing.T) {
	exp, err := experiment.Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sc := &Scenario{Steps: []ScenarioStep{{Run: 0.1}, {Set: map[string]float64{"gravity": 1}}}}

	results, err := RunScenario(context.Background(), exp, sc)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the completed step to be returned, got %d", len(results))
	}
}
