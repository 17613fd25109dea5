package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/trace"
)

var (
	configPath    string // YAML run configuration; empty runs the built-in defaults
	logLevel      string // Log verbosity level
	traceLevel    string // Step trace verbosity
	ranks         int    // In-process ranks
	blocksPerRank int    // Blocks owned by each rank
	outputDir     string // Output and restart directory
	runDuration   string // Overrides run_duration
	doRestart     bool   // Resume from the restart marker
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ocean-sim",
	Short: "Split-explicit layered ocean model on a planar channel mesh",
}

// loadConfig reads the configuration and applies flags the user set. Flags
// left at their defaults never override the file.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("ranks") {
		cfg.Ranks = ranks
	}
	if flags.Changed("blocks-per-rank") {
		cfg.BlocksPerRank = blocksPerRank
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("run-duration") {
		cfg.RunDuration = runDuration
	}
	if flags.Changed("restart") {
		cfg.DoRestart = doRestart
	}
	return cfg
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runCmd executes the simulation
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ocean simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		cfg := loadConfig(cmd)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logrus.Infof("Starting simulation: %d rank(s) x %d block(s), %dx%d cells, %d levels, integrator %s",
			cfg.Ranks, cfg.BlocksPerRank, cfg.Mesh.NX, cfg.Mesh.NY, len(cfg.Mesh.LayerThickness), cfg.TimeIntegrator)
		res, err := Simulate(ctx, cfg, trace.TraceLevel(traceLevel))
		if perr := PrintResult(os.Stdout, res); perr != nil {
			logrus.Errorf("Failed to print results: %v", perr)
		}
		if err != nil {
			logrus.Fatalf("Simulation failed (code %#x): %v", uint32(res.Code), err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks a configuration and its mesh without running
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a run configuration",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		cfg := loadConfig(cmd)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if _, err := clock.New(cfg.ClockSettings("")); err != nil {
			logrus.Fatalf("Invalid time settings: %v", err)
		}
		meshes, err := buildMeshes(cfg)
		if err != nil {
			logrus.Fatalf("Invalid mesh: %v", err)
		}
		logrus.Infof("Configuration OK: %d partition(s)", len(meshes))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&configPath, "config", "", "Path to the YAML run configuration")
		c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().IntVar(&ranks, "ranks", 1, "Number of in-process ranks")
		c.Flags().IntVar(&blocksPerRank, "blocks-per-rank", 1, "Blocks owned by each rank")
		c.Flags().StringVar(&outputDir, "output-dir", "output", "Directory for output and restart files")
		c.Flags().StringVar(&runDuration, "run-duration", "", "Run duration ([D_]hh:mm:ss), overrides the configuration")
		c.Flags().BoolVar(&doRestart, "restart", false, "Resume from the restart marker")
	}
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, steps)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
