package automation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/invpend/internal/experiment"
	"github.com/san-kum/invpend/internal/sim"
)

// Scenario scripts what a user would do at the live view: run for a while,
// flip control on, retune, reset. Steps act on one experiment in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep holds one or more actions. Within a step they apply in field
// order: reset, pid, set, then run.
type ScenarioStep struct {
	Reset bool               `yaml:"reset"`
	PID   *bool              `yaml:"pid"`
	Set   map[string]float64 `yaml:"set"`
	Run   float64            `yaml:"run"`
}

type StepResult struct {
	Index   int                `json:"index"`
	Action  string             `json:"action"`
	Final   sim.Sample         `json:"final"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// RunScenario applies every step to exp. Results so far are returned with the
// first error.
func RunScenario(ctx context.Context, exp *experiment.Experiment, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		res := StepResult{Index: i + 1, Action: step.describe()}

		if step.Reset {
			exp.Loop.Reset()
		}
		if step.PID != nil {
			exp.Loop.SetEnabled(*step.PID)
		}
		for _, k := range sortedKeys(step.Set) {
			if err := exp.SetParam(k, step.Set[k]); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		if step.Run > 0 {
			out, err := exp.Loop.Run(ctx, step.Run)
			if out != nil {
				res.Final = out.Final()
				res.Metrics = out.Metrics
			}
			if err != nil {
				results = append(results, res)
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
		} else {
			res.Final = exp.Loop.Snapshot()
		}

		results = append(results, res)
	}

	return results, nil
}

func (s ScenarioStep) describe() string {
	var parts []string
	if s.Reset {
		parts = append(parts, "reset")
	}
	if s.PID != nil {
		if *s.PID {
			parts = append(parts, "pid on")
		} else {
			parts = append(parts, "pid off")
		}
	}
	for _, k := range sortedKeys(s.Set) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, s.Set[k]))
	}
	if s.Run > 0 {
		parts = append(parts, fmt.Sprintf("run %gs", s.Run))
	}
	if len(parts) == 0 {
		return "noop"
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
