package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/clock"
)

var validIntegrators = map[string]bool{
	UnsplitExplicit: true,
	SplitExplicit:   true,
}

var validVertCoordMovements = map[string]bool{
	VertFixed:                 true,
	VertUniformStretching:     true,
	VertImpermeableInterfaces: true,
	VertUserSpecified:         true,
}

var validPressureGradients = map[string]bool{
	PGPressureAndZMid:     true,
	PGMontgomeryPotential: true,
	PGJacobianFromDensity: true,
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// Validate checks every start-up constraint. It returns a sim.ErrConfig
// wrapped error naming the first failing check; unsupported but legal
// combinations are logged as warnings.
func (c *Config) Validate() error {
	if !validVertCoordMovements[c.VertCoordMovement] {
		return fmt.Errorf("%w: vert_coord_movement %q is not one of: %s",
			sim.ErrConfig, c.VertCoordMovement, keys(validVertCoordMovements))
	}
	if !validPressureGradients[c.PressureGradientType] {
		return fmt.Errorf("%w: pressure_gradient_type %q is not one of: %s",
			sim.ErrConfig, c.PressureGradientType, keys(validPressureGradients))
	}
	if c.PressureGradientType == PGMontgomeryPotential && c.VertCoordMovement != VertImpermeableInterfaces {
		return fmt.Errorf("%w: pressure_gradient_type %s requires vert_coord_movement %s, got %s",
			sim.ErrConfig, PGMontgomeryPotential, VertImpermeableInterfaces, c.VertCoordMovement)
	}
	if !validIntegrators[c.TimeIntegrator] {
		return fmt.Errorf("%w: time_integrator %q is not one of: %s",
			sim.ErrConfig, c.TimeIntegrator, keys(validIntegrators))
	}
	if c.AdvOrder < 2 || c.AdvOrder > 4 {
		return fmt.Errorf("%w: adv_order must be 2, 3 or 4, got %d", sim.ErrConfig, c.AdvOrder)
	}
	if c.FilterBtrMode && c.VertCoordMovement != VertFixed {
		logrus.Warnf("filter_btr_mode has only been tested with vert_coord_movement=%s (got %s)",
			VertFixed, c.VertCoordMovement)
	}
	if c.GMEnable && c.GMKappa < 0 {
		return fmt.Errorf("%w: gm_kappa must be non-negative, got %v", sim.ErrConfig, c.GMKappa)
	}
	if c.Ranks < 1 || c.BlocksPerRank < 1 {
		return fmt.Errorf("%w: ranks and blocks_per_rank must be positive, got %d and %d",
			sim.ErrConfig, c.Ranks, c.BlocksPerRank)
	}
	if c.HaloLayers < 1 {
		return fmt.Errorf("%w: halo_layers must be at least 1, got %d", sim.ErrConfig, c.HaloLayers)
	}
	// higher-order stencils reach the neighbours of neighbours
	if c.AdvOrder > 2 && c.HaloLayers < 2 {
		return fmt.Errorf("%w: adv_order %d needs halo_layers >= 2, got %d", sim.ErrConfig, c.AdvOrder, c.HaloLayers)
	}
	if c.DoRestart && c.RestartTimestampPath == "" {
		return fmt.Errorf("%w: do_restart needs restart_timestamp_path", sim.ErrConfig)
	}
	for name, s := range map[string]string{
		"stats_interval":   c.StatsInterval,
		"input_interval":   c.InputInterval,
		"output_interval":  c.OutputInterval,
		"restart_interval": c.RestartInterval,
	} {
		if _, _, err := clock.ParsePeriod(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.WritesRestarts() && c.RestartTimestampPath == "" {
		return fmt.Errorf("%w: restart_interval %s needs restart_timestamp_path", sim.ErrConfig, c.RestartInterval)
	}
	if c.Integrator.BtrSubcycles < 1 && c.TimeIntegrator == SplitExplicit {
		return fmt.Errorf("%w: integrator.btr_subcycles must be positive, got %d", sim.ErrConfig, c.Integrator.BtrSubcycles)
	}
	if c.EOS.Rho0 <= 0 {
		return fmt.Errorf("%w: eos.rho0 must be positive, got %v", sim.ErrConfig, c.EOS.Rho0)
	}
	return nil
}

// WritesRestarts reports whether restart_interval enables the restart alarm.
func (c *Config) WritesRestarts() bool {
	_, ok, err := clock.ParsePeriod(c.RestartInterval)
	return ok && err == nil
}

// ClockSettings returns the clock strings. A non-empty start overrides the
// configured start time (used when resuming from a restart marker).
func (c *Config) ClockSettings(start string) clock.Settings {
	if start == "" {
		start = c.StartTime
	}
	return clock.Settings{
		Start:       start,
		Stop:        c.StopTime,
		RunDuration: c.RunDuration,
		TimeStep:    c.TimeStep,
	}
}
