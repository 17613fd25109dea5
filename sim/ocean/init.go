package ocean

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// InitEnv carries what block initialization needs beyond the block itself.
type InitEnv struct {
	Config        *config.Config
	Comm          comm.Communicator
	Collaborators Collaborators

	// MaxMeshDensity is the global maximum used for mesh scaling. Zero means
	// not yet known: InitializeBlock resolves it with a collective max.
	MaxMeshDensity float64
}

func (env *InitEnv) needsMaxDensity() bool {
	return env.Config.HmixScaleWithMesh && env.Config.MaxMeshDensity <= 0 && env.MaxMeshDensity <= 0
}

// initError wraps err with sim.ErrInit unless it already carries a
// configuration or communication error.
func initError(blk *block.Block, step string, err error) error {
	if errors.Is(err, sim.ErrConfig) || errors.Is(err, sim.ErrComm) {
		return fmt.Errorf("block %d: %s: %w", blk.ID, step, err)
	}
	return fmt.Errorf("%w: block %d: %s: %w", sim.ErrInit, blk.ID, step, err)
}

// InitializeBlocks initializes every block in order and stops at the first
// failure. The global maximum mesh density is resolved once, before the
// first block, so every rank issues the same collectives whatever its block
// count.
func InitializeBlocks(ctx context.Context, blocks []*block.Block, dt time.Duration, env *InitEnv) error {
	if env.needsMaxDensity() {
		v, err := comm.MaxScalar(ctx, env.Comm, localMaxDensity(blocks))
		if err != nil {
			return fmt.Errorf("maximum mesh density: %w", err)
		}
		env.MaxMeshDensity = v
		logrus.Debugf("Global maximum mesh density %g", v)
	}
	for _, blk := range blocks {
		if err := InitializeBlock(ctx, blk, dt, env); err != nil {
			return err
		}
	}
	return nil
}

// InitializeBlock bootstraps one block before the first step: advection
// stencils, cold-start boundary layer depth, diagnostic solve, inactive-level
// fill, transport velocity, mesh scaling and reconstruction, ending with the
// current time level copied into every level.
func InitializeBlock(ctx context.Context, blk *block.Block, dt time.Duration, env *InitEnv) error {
	cfg := env.Config
	c := env.Collaborators
	m := blk.Mesh
	tl := blk.State.Current()

	if err := ComputeAdvectionCoefficients(m, cfg.AdvOrder, blk.Ops); err != nil {
		return initError(blk, "advection coefficients", err)
	}

	if !cfg.DoRestart {
		for i := 0; i < m.NCells; i++ {
			blk.Diag.BoundaryLayerDepth[i] = 0
			if m.MaxLevelCell[i] > 0 {
				blk.Diag.BoundaryLayerDepth[i] = 0.5 * tl.LayerThickness.At(i, 0)
			}
		}
	}

	if err := c.Diagnostics.Solve(blk, tl); err != nil {
		return initError(blk, "diagnostic solve", err)
	}

	blk.FillInactive(tl)

	if cfg.GMEnable {
		if err := c.Bolus.Compute(blk, tl); err != nil {
			return initError(blk, "Bolus velocity", err)
		}
	}
	UpdateTransportVelocity(blk, tl, cfg.GMEnable)

	if env.needsMaxDensity() {
		v, err := comm.MaxScalar(ctx, env.Comm, localMaxDensity([]*block.Block{blk}))
		if err != nil {
			return initError(blk, "maximum mesh density", err)
		}
		env.MaxMeshDensity = v
	}
	maxDensity := cfg.MaxMeshDensity
	if maxDensity <= 0 {
		maxDensity = env.MaxMeshDensity
	}
	if err := ComputeMeshScaling(m, blk.Ops, cfg.HmixScaleWithMesh, maxDensity); err != nil {
		return initError(blk, "mesh scaling", err)
	}

	if err := c.Reconstructor.Init(blk); err != nil {
		return initError(blk, "reconstruction operators", err)
	}
	if err := c.Reconstructor.Reconstruct(blk, tl); err != nil {
		return initError(blk, "velocity reconstruction", err)
	}

	warnCFL(blk, tl, dt)
	blk.State.SnapshotToAll()
	blk.Log().Debugf("Initialized %d owned cells, %d owned edges", m.OwnedCells, m.OwnedEdges)
	return nil
}

// UpdateTransportVelocity sets transport = normal velocity, plus the Bolus
// velocity on active levels when GM is on.
func UpdateTransportVelocity(blk *block.Block, tl *block.TimeLevel, withBolus bool) {
	d := blk.Diag
	d.TransportVelocity.CopyFrom(tl.NormalVelocity)
	if !withBolus {
		return
	}
	m := blk.Mesh
	for e := 0; e < m.NEdges; e++ {
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			d.TransportVelocity.Set(e, k, d.TransportVelocity.At(e, k)+d.BolusVelocity.At(e, k))
		}
	}
}

// warnCFL logs when the initial velocity crosses an edge in less than one step.
func warnCFL(blk *block.Block, tl *block.TimeLevel, dt time.Duration) {
	if cfl := maxCFL(blk, tl, dt); cfl > 1 {
		blk.Log().Warnf("Initial advective CFL number %.3f exceeds 1 at dt=%s", cfl, dt)
	}
}

func maxCFL(blk *block.Block, tl *block.TimeLevel, dt time.Duration) float64 {
	m := blk.Mesh
	var cfl float64
	for e := 0; e < m.OwnedEdges; e++ {
		if m.DcEdge[e] <= 0 {
			continue
		}
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			u := tl.NormalVelocity.At(e, k)
			if u < 0 {
				u = -u
			}
			cfl = max(cfl, u*dt.Seconds()/m.DcEdge[e])
		}
	}
	return cfl
}
