package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/sim"
)

const (
	DefaultDt        = 0.02
	DefaultDuration  = 10.0
	DefaultGravity   = 9.81
	DefaultLength    = 2.0
	DefaultMass      = 1.0
	DefaultKp        = 300.0
	DefaultKi        = 20.0
	DefaultKd        = 500.0
	DefaultMaxOutput = 30.0
)

type Config struct {
	Dt            float64          `yaml:"dt"`
	Duration      float64          `yaml:"duration"`
	Integrator    string           `yaml:"integrator,omitempty"`
	ValidateState bool             `yaml:"validate_state"`
	Plant         PlantConfig      `yaml:"plant"`
	Controller    ControllerConfig `yaml:"controller"`
}

type PlantConfig struct {
	Gravity float64 `yaml:"gravity"`
	Length  float64 `yaml:"length"`
	Mass    float64 `yaml:"mass"`
}

type ControllerConfig struct {
	Kp        float64 `yaml:"kp"`
	Ki        float64 `yaml:"ki"`
	Kd        float64 `yaml:"kd"`
	MaxOutput float64 `yaml:"max_output"`
	Setpoint  float64 `yaml:"setpoint"`
	Enabled   bool    `yaml:"enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Plant: PlantConfig{
			Gravity: DefaultGravity,
			Length:  DefaultLength,
			Mass:    DefaultMass,
		},
		Controller: ControllerConfig{
			Kp:        DefaultKp,
			Ki:        DefaultKi,
			Kd:        DefaultKd,
			MaxOutput: DefaultMaxOutput,
		},
	}
}

// Load reads a YAML file over the defaults, so a file may set only the
// fields it cares about.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks the constants the plant and controller would reject, so a
// bad file fails before anything is built.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"dt", c.Dt, c.Dt > 0},
		{"duration", c.Duration, c.Duration > 0},
		{"plant.gravity", c.Plant.Gravity, true},
		{"plant.length", c.Plant.Length, c.Plant.Length > 0},
		{"plant.mass", c.Plant.Mass, c.Plant.Mass > 0},
		{"controller.kp", c.Controller.Kp, true},
		{"controller.ki", c.Controller.Ki, true},
		{"controller.kd", c.Controller.Kd, true},
		{"controller.max_output", c.Controller.MaxOutput, c.Controller.MaxOutput >= 0},
		{"controller.setpoint", c.Controller.Setpoint, true},
	}
	for _, chk := range checks {
		if !chk.ok || !dynamo.IsFinite(chk.v) {
			return dynamo.BoundsError(chk.name, chk.v)
		}
	}
	if steps := math.Round(c.Duration / c.Dt); steps > sim.MaxSteps {
		return fmt.Errorf("%w: duration/dt=%.0f steps exceeds %d", dynamo.ErrParameterBounds, steps, sim.MaxSteps)
	}
	return nil
}

// ParseFloatOrZero parses user-typed numbers; anything unparsable or
// non-finite becomes 0.
func ParseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !dynamo.IsFinite(v) {
		return 0
	}
	return v
}
