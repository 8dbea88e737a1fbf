package config

import "sort"

// Presets are keyed by plant name, then preset name. Only the pendulum
// plant exists, but the layout leaves room for variants such as a moon
// pendulum with different constants.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"classic": DefaultConfig(),
		"pd": {
			Dt: DefaultDt, Duration: 15.0,
			Plant:      PlantConfig{Gravity: DefaultGravity, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: 60, Ki: 0, Kd: 20, MaxOutput: DefaultMaxOutput, Enabled: true},
		},
		"pid": {
			Dt: DefaultDt, Duration: 30.0,
			Plant:      PlantConfig{Gravity: DefaultGravity, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: 60, Ki: 5, Kd: 20, MaxOutput: DefaultMaxOutput, Enabled: true},
		},
		"freefall": {
			Dt: DefaultDt, Duration: 10.0,
			Plant:      PlantConfig{Gravity: DefaultGravity, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, MaxOutput: DefaultMaxOutput},
		},
		"weak": {
			Dt: DefaultDt, Duration: 10.0,
			Plant:      PlantConfig{Gravity: DefaultGravity, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: 60, Ki: 0, Kd: 20, MaxOutput: 10, Enabled: true},
		},
		"fine": {
			Dt: 0.005, Duration: 10.0,
			Plant:      PlantConfig{Gravity: DefaultGravity, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, MaxOutput: DefaultMaxOutput, Enabled: true},
		},
		"moon": {
			Dt: DefaultDt, Duration: 20.0,
			Plant:      PlantConfig{Gravity: 1.62, Length: DefaultLength, Mass: DefaultMass},
			Controller: ControllerConfig{Kp: 20, Ki: 0, Kd: 10, MaxOutput: DefaultMaxOutput, Enabled: true},
		},
	},
}

// GetPreset returns a copy, so callers may override fields freely.
func GetPreset(plant, name string) *Config {
	if presets, ok := Presets[plant]; ok {
		if cfg, ok := presets[name]; ok {
			return cfg.Clone()
		}
	}
	return nil
}

func ListPresets(plant string) []string {
	presets, ok := Presets[plant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
