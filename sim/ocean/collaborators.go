package ocean

import (
	"context"
	"fmt"
	"time"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// DiagnosticSolver recomputes density, pressure and derived flow
// diagnostics from one time level.
type DiagnosticSolver interface {
	Solve(blk *block.Block, tl *block.TimeLevel) error
}

// BolusComputer fills Diagnostics.BolusVelocity for the Gent-McWilliams
// parameterization.
type BolusComputer interface {
	Compute(blk *block.Block, tl *block.TimeLevel) error
}

// Reconstructor maps normal velocities to cell-centred vector fields.
// Init builds per-block operators once; Reconstruct runs every step.
type Reconstructor interface {
	Init(blk *block.Block) error
	Reconstruct(blk *block.Block, tl *block.TimeLevel) error
}

// ForcingBuilder builds the surface forcing and transmission arrays of one
// block from its current state.
type ForcingBuilder interface {
	Build(blk *block.Block, now time.Time) error
}

// TimeIntegrator advances every block by one step. It reads time level 1
// and must write every field of time level 2.
type TimeIntegrator interface {
	Step(ctx context.Context, blocks []*block.Block, dt time.Duration, now time.Time) error
}

// Streams is the stream-management collaborator. Reads and writes are
// gated by the clock's alarms; the driver resets the alarms afterwards.
type Streams interface {
	ReadInput(ctx context.Context, clk *clock.Clock, blocks []*block.Block) error
	WriteOutput(ctx context.Context, clk *clock.Clock, blocks []*block.Block) error
	WriteRestart(ctx context.Context, clk *clock.Clock, blocks []*block.Block) error
	ReadRestart(ctx context.Context, at time.Time, blocks []*block.Block) error
}

// Collaborators bundles the external pieces the core calls into.
type Collaborators struct {
	Diagnostics   DiagnosticSolver
	Bolus         BolusComputer
	Reconstructor Reconstructor
	Forcing       ForcingBuilder
	Integrator    TimeIntegrator
}

// Registration variables, set by sim/process in its init().
var (
	NewDiagnosticSolverFunc func(cfg *config.Config) DiagnosticSolver
	NewBolusComputerFunc    func(cfg *config.Config) BolusComputer
	NewReconstructorFunc    func(cfg *config.Config) Reconstructor
	NewForcingBuilderFunc   func(cfg *config.Config) ForcingBuilder
	NewTimeIntegratorFunc   func(cfg *config.Config, c Collaborators) (TimeIntegrator, error)
)

// NewCollaborators builds the registered collaborators for cfg.
func NewCollaborators(cfg *config.Config) (Collaborators, error) {
	if NewDiagnosticSolverFunc == nil || NewBolusComputerFunc == nil || NewReconstructorFunc == nil ||
		NewForcingBuilderFunc == nil || NewTimeIntegratorFunc == nil {
		return Collaborators{}, fmt.Errorf("%w: no collaborators registered; import sim/process", sim.ErrConfig)
	}
	c := Collaborators{
		Diagnostics:   NewDiagnosticSolverFunc(cfg),
		Bolus:         NewBolusComputerFunc(cfg),
		Reconstructor: NewReconstructorFunc(cfg),
		Forcing:       NewForcingBuilderFunc(cfg),
	}
	integrator, err := NewTimeIntegratorFunc(cfg, c)
	if err != nil {
		return Collaborators{}, err
	}
	c.Integrator = integrator
	return c, nil
}

func (c Collaborators) validate() error {
	switch {
	case c.Diagnostics == nil:
		return fmt.Errorf("%w: missing diagnostic solver", sim.ErrConfig)
	case c.Bolus == nil:
		return fmt.Errorf("%w: missing Bolus velocity computer", sim.ErrConfig)
	case c.Reconstructor == nil:
		return fmt.Errorf("%w: missing vector reconstructor", sim.ErrConfig)
	case c.Forcing == nil:
		return fmt.Errorf("%w: missing forcing builder", sim.ErrConfig)
	case c.Integrator == nil:
		return fmt.Errorf("%w: missing time integrator", sim.ErrConfig)
	}
	return nil
}

// NopStreams performs no I/O.
type NopStreams struct{}

func (NopStreams) ReadInput(context.Context, *clock.Clock, []*block.Block) error    { return nil }
func (NopStreams) WriteOutput(context.Context, *clock.Clock, []*block.Block) error  { return nil }
func (NopStreams) WriteRestart(context.Context, *clock.Clock, []*block.Block) error { return nil }
func (NopStreams) ReadRestart(context.Context, time.Time, []*block.Block) error     { return nil }
