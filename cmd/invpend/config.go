package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/invpend/internal/config"
)

func addConfigFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&preset, "preset", "", "use preset configuration")
	fs.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	fs.Float64Var(&dt, "dt", config.DefaultDt, "tick interval shared by plant and controller")
	fs.StringVar(&integrator, "integrator", "", "plant integrator (default semi-implicit)")
	fs.Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	fs.Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	fs.Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	fs.Float64Var(&setpoint, "setpoint", 0, "target angle (rad, 0 = upright)")
	fs.Float64Var(&maxOutput, "max-output", config.DefaultMaxOutput, "torque bound")
	fs.BoolVar(&pidOn, "pid", false, "start with PID enabled")
	fs.BoolVar(&validate, "validate", false, "stop runs on non-finite state")
}

// resolveConfig layers defaults, then a preset, then a config file, then any
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(plantName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(plantName))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Controller.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Controller.Kd = kd
	}
	if flags.Changed("setpoint") {
		cfg.Controller.Setpoint = setpoint
	}
	if flags.Changed("max-output") {
		cfg.Controller.MaxOutput = maxOutput
	}
	if flags.Changed("pid") {
		cfg.Controller.Enabled = pidOn
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseGrid reads "a,b,c" into values; blanks are skipped.
func parseGrid(s string) ([]float64, error) {
	var vals []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", part)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values")
	}
	return vals, nil
}
