package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/invpend/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt != 0.02 {
		t.Errorf("expected dt 0.02, got %f", cfg.Dt)
	}
	if cfg.Controller.Kp != 300 || cfg.Controller.Ki != 20 || cfg.Controller.Kd != 500 {
		t.Errorf("expected gains 300/20/500, got %v", cfg.Controller)
	}
	if cfg.Controller.MaxOutput != 30 {
		t.Errorf("expected max output 30, got %f", cfg.Controller.MaxOutput)
	}
	if cfg.Controller.Enabled {
		t.Error("controller should start disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.01 }},
		{"nan dt", func(c *Config) { c.Dt = math.NaN() }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"zero length", func(c *Config) { c.Plant.Length = 0 }},
		{"negative mass", func(c *Config) { c.Plant.Mass = -1 }},
		{"inf gravity", func(c *Config) { c.Plant.Gravity = math.Inf(1) }},
		{"negative max output", func(c *Config) { c.Controller.MaxOutput = -1 }},
		{"nan kp", func(c *Config) { c.Controller.Kp = math.NaN() }},
		{"inf setpoint", func(c *Config) { c.Controller.Setpoint = math.Inf(-1) }},
		{"too many steps", func(c *Config) { c.Duration, c.Dt = 1e9, 1e-6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("controller:\n  kp: 60\n  enabled: true\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Controller.Kp != 60 || !cfg.Controller.Enabled {
		t.Errorf("expected kp 60 enabled, got %v", cfg.Controller)
	}
	if cfg.Controller.Kd != DefaultKd || cfg.Dt != DefaultDt {
		t.Errorf("unset fields should keep defaults, got kd=%f dt=%f", cfg.Controller.Kd, cfg.Dt)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("dt: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Controller.Setpoint = 0.25
	cfg.Integrator = "rk4"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "pd")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Controller.Kp != 60 || cfg.Controller.Kd != 20 {
		t.Errorf("expected pd gains 60/20, got %v", cfg.Controller)
	}

	cfg.Controller.Kp = 1
	if Presets["pendulum"]["pd"].Controller.Kp != 60 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("pendulum", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "pd"); cfg != nil {
		t.Error("expected nil for nonexistent plant")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pendulum")
	if len(presets) == 0 {
		t.Fatal("expected presets for pendulum")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("expected sorted names, got %v", presets)
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent plant")
	}
}

func TestPresetsValidate(t *testing.T) {
	for plant, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", plant, name, err)
			}
		}
	}
}

func TestParseFloatOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"300", 300},
		{" 0.5 ", 0.5},
		{"-2e1", -20},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"inf", 0},
	}
	for _, tt := range tests {
		if got := ParseFloatOrZero(tt.in); got != tt.want {
			t.Errorf("ParseFloatOrZero(%q): expected %f, got %f", tt.in, tt.want, got)
		}
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("duration: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("pendulum", "pd")
	cfg, err := LoadOver(base, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 3 || cfg.Controller.Kp != 60 {
		t.Errorf("expected preset gains with file duration, got %+v", cfg)
	}
	if base.Duration == 3 {
		t.Error("LoadOver should not modify base")
	}
}
