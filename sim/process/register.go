// register.go wires the reference collaborators into the ocean package's
// registration variables. This init() runs when any package imports
// sim/process, breaking the import cycle between sim/ocean (interface owner)
// and sim/process (implementation).
package process

import (
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/ocean"
)

func init() {
	ocean.NewDiagnosticSolverFunc = func(cfg *config.Config) ocean.DiagnosticSolver {
		return NewDiagnosticSolver(cfg)
	}
	ocean.NewBolusComputerFunc = func(cfg *config.Config) ocean.BolusComputer {
		return NewBolusComputer(cfg)
	}
	ocean.NewReconstructorFunc = func(*config.Config) ocean.Reconstructor {
		return &Reconstructor{}
	}
	ocean.NewForcingBuilderFunc = func(cfg *config.Config) ocean.ForcingBuilder {
		return NewForcingBuilder(cfg)
	}
	ocean.NewTimeIntegratorFunc = NewTimeIntegrator
}
