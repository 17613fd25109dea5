// Package config holds the run configuration. It is read once at start-up,
// validated before any block is touched, and treated as immutable afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ocean-sim/ocean-sim/sim"
)

// Time integrators.
const (
	UnsplitExplicit = "unsplit_explicit"
	SplitExplicit   = "split_explicit"
)

// Vertical coordinate movement modes.
const (
	VertFixed                 = "fixed"
	VertUniformStretching     = "uniform_stretching"
	VertImpermeableInterfaces = "impermeable_interfaces"
	VertUserSpecified         = "user_specified"
)

// Pressure gradient formulations.
const (
	PGPressureAndZMid     = "pressure_and_zmid"
	PGMontgomeryPotential = "montgomery_potential"
	PGJacobianFromDensity = "jacobian_from_density"
)

// Config is the full run configuration.
// Every section must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	StartTime   string `yaml:"start_time"`
	StopTime    string `yaml:"stop_time"`
	RunDuration string `yaml:"run_duration"`
	TimeStep    string `yaml:"dt"`

	TimeIntegrator       string `yaml:"time_integrator"`
	VertCoordMovement    string `yaml:"vert_coord_movement"`
	PressureGradientType string `yaml:"pressure_gradient_type"`
	AdvOrder             int    `yaml:"adv_order"`

	FilterBtrMode     bool `yaml:"filter_btr_mode"`
	BtrResetThickness bool `yaml:"btr_reset_thickness"`

	HmixScaleWithMesh bool    `yaml:"hmix_scale_with_mesh"`
	MaxMeshDensity    float64 `yaml:"max_mesh_density"` // <= 0: use the global maximum

	GMEnable bool    `yaml:"gm_enable"`
	GMKappa  float64 `yaml:"gm_kappa"` // m^2/s

	StatsInterval   string `yaml:"stats_interval"`
	InputInterval   string `yaml:"input_interval"`
	OutputInterval  string `yaml:"output_interval"`
	RestartInterval string `yaml:"restart_interval"`

	DoRestart            bool     `yaml:"do_restart"`
	RestartTimestampPath string   `yaml:"restart_timestamp_path"`
	InitialStats         bool     `yaml:"initial_stats"`
	WriteOutputOnStartup bool     `yaml:"write_output_on_startup"`
	OutputDir            string   `yaml:"output_dir"`
	InputPath            string   `yaml:"input_path"`
	OutputFields         []string `yaml:"output_fields"`

	Ranks         int `yaml:"ranks"`
	BlocksPerRank int `yaml:"blocks_per_rank"`
	HaloLayers    int `yaml:"halo_layers"`

	Mesh         MeshConfig         `yaml:"mesh"`
	InitialState InitialStateConfig `yaml:"initial_state"`
	EOS          EOSConfig          `yaml:"eos"`
	Forcing      ForcingConfig      `yaml:"forcing"`
	Integrator   IntegratorConfig   `yaml:"integrator"`
}

// MeshConfig describes the synthetic planar channel.
type MeshConfig struct {
	NX             int       `yaml:"nx"`
	NY             int       `yaml:"ny"`
	Dc             float64   `yaml:"dc"`
	LayerThickness []float64 `yaml:"layer_thickness"`
	ShelfDepth     float64   `yaml:"shelf_depth"`
	BasinDepth     float64   `yaml:"basin_depth"`
	DensityBump    float64   `yaml:"density_bump"`
}

// InitialStateConfig sets the analytic cold-start state.
type InitialStateConfig struct {
	SurfaceTemperature float64 `yaml:"surface_temperature"`
	DeepTemperature    float64 `yaml:"deep_temperature"`
	ThermoclineDepth   float64 `yaml:"thermocline_depth"`
	Salinity           float64 `yaml:"salinity"`
	JetSpeed           float64 `yaml:"jet_speed"`
	// Perturbation adds reproducible noise to temperature, keyed by global
	// cell id so every decomposition sees the same field.
	Perturbation float64 `yaml:"perturbation"`
	Seed         int64   `yaml:"seed"`
}

// EOSConfig parameterizes the linear equation of state.
type EOSConfig struct {
	Rho0  float64 `yaml:"rho0"`
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	T0    float64 `yaml:"t0"`
	S0    float64 `yaml:"s0"`
}

// ForcingConfig parameterizes the surface forcing builder.
type ForcingConfig struct {
	WindStressX          float64 `yaml:"wind_stress_x"`
	WindStressY          float64 `yaml:"wind_stress_y"`
	RestoringTemperature float64 `yaml:"restoring_temperature"`
	RestoringSalinity    float64 `yaml:"restoring_salinity"`
	PistonVelocity       float64 `yaml:"piston_velocity"` // m/s
	ShortwaveDepth       float64 `yaml:"shortwave_depth"` // e-folding depth, m
}

// IntegratorConfig parameterizes the reference time integrators.
type IntegratorConfig struct {
	BottomDrag     float64 `yaml:"bottom_drag"`     // linear drag rate, 1/s
	BarotropicDrag float64 `yaml:"barotropic_drag"` // extra damping of the barotropic mode, 1/s
	BtrSubcycles   int     `yaml:"btr_subcycles"`
}

// Default returns a configuration that runs a one-day channel simulation.
func Default() *Config {
	return &Config{
		StartTime:            "0001-01-01_00:00:00",
		RunDuration:          "1_00:00:00",
		TimeStep:             "00:10:00",
		TimeIntegrator:       SplitExplicit,
		VertCoordMovement:    VertFixed,
		PressureGradientType: PGPressureAndZMid,
		AdvOrder:             3,
		GMKappa:              600,
		StatsInterval:        "06:00:00",
		InputInterval:        "none",
		OutputInterval:       "1_00:00:00",
		RestartInterval:      "1_00:00:00",
		RestartTimestampPath: "restart_timestamp",
		InitialStats:         true,
		OutputDir:            "output",
		Ranks:                1,
		BlocksPerRank:        1,
		HaloLayers:           2,
		Mesh: MeshConfig{
			NX: 16, NY: 12, Dc: 10000,
			LayerThickness: []float64{10, 20, 40, 80, 150},
			ShelfDepth:     80, BasinDepth: 300,
			DensityBump: 2,
		},
		InitialState: InitialStateConfig{
			SurfaceTemperature: 20, DeepTemperature: 4, ThermoclineDepth: 100,
			Salinity: 35, JetSpeed: 0.2, Seed: 42,
		},
		EOS: EOSConfig{Rho0: 1026, Alpha: 0.2, Beta: 0.8, T0: 10, S0: 35},
		Forcing: ForcingConfig{
			WindStressX: 0.1, RestoringTemperature: 18, RestoringSalinity: 35,
			PistonVelocity: 1.0e-5, ShortwaveDepth: 20,
		},
		Integrator: IntegratorConfig{BottomDrag: 1.0e-6, BarotropicDrag: 1.0e-5, BtrSubcycles: 10},
	}
}

// Load reads path over the defaults with strict field checking: unknown
// keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", sim.ErrConfig, path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. The stop condition has no default
// in a file: a file naming neither stop_time nor run_duration is rejected when
// the clock is built.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.RunDuration = ""
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing config: %v", sim.ErrConfig, err)
	}
	return cfg, nil
}
