package process

import (
	"context"
	"fmt"
	"time"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/ocean"
)

// Integrator is the reference time integrator. Momentum is driven by the
// surface wind stress in the top layer and damped by linear drag in the
// bottom layer; temperature is restored at the surface with the flux spread
// over depth by shortwave transmission, salinity in the top layer only.
// Layer thickness and sea surface height are held fixed.
//
// In split mode the barotropic velocity is subcycled with its own forcing
// and drag, and the baroclinic velocity is kept at zero thickness-weighted
// mean. After the update the diagnostics of time level 2 are refreshed.
type Integrator struct {
	split      bool
	rho0       float64
	bottomDrag float64
	btrDrag    float64
	subcycles  int
	gm         bool
	collab     ocean.Collaborators
}

// NewTimeIntegrator builds the integrator named by cfg.TimeIntegrator.
func NewTimeIntegrator(cfg *config.Config, c ocean.Collaborators) (ocean.TimeIntegrator, error) {
	ig := &Integrator{
		rho0:       cfg.EOS.Rho0,
		bottomDrag: cfg.Integrator.BottomDrag,
		btrDrag:    cfg.Integrator.BarotropicDrag,
		subcycles:  max(cfg.Integrator.BtrSubcycles, 1),
		gm:         cfg.GMEnable,
		collab:     c,
	}
	switch cfg.TimeIntegrator {
	case config.UnsplitExplicit:
	case config.SplitExplicit:
		ig.split = true
	default:
		return nil, fmt.Errorf("%w: unknown time integrator %q", sim.ErrConfig, cfg.TimeIntegrator)
	}
	if c.Diagnostics == nil || c.Reconstructor == nil || (cfg.GMEnable && c.Bolus == nil) {
		return nil, fmt.Errorf("%w: time integrator needs diagnostic, reconstruction and Bolus collaborators", sim.ErrConfig)
	}
	return ig, nil
}

func (ig *Integrator) Step(ctx context.Context, blocks []*block.Block, dt time.Duration, _ time.Time) error {
	for _, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		tl1, tl2 := blk.State.Current(), blk.State.Next()
		tl2.CopyFrom(tl1)
		if ig.split {
			ig.splitMomentum(blk, tl1, tl2, dt.Seconds())
		} else {
			ig.unsplitMomentum(blk, tl1, tl2, dt.Seconds())
		}
		ig.tracers(blk, tl1, tl2, dt.Seconds())
		if err := ig.refresh(blk, tl2); err != nil {
			return fmt.Errorf("block %d: %w", blk.ID, err)
		}
	}
	return nil
}

// baroclinicTendency is the layer-k momentum tendency excluding any
// barotropic forcing.
func (ig *Integrator) baroclinicTendency(blk *block.Block, e, k, nk int, u float64) float64 {
	var du float64
	if k == 0 {
		if h := blk.Diag.LayerThicknessEdge.At(e, 0); h > 0 {
			du += blk.Forcing.SurfaceWindStress[e] / (ig.rho0 * h)
		}
	}
	if k == nk-1 {
		du -= ig.bottomDrag * u
	}
	return du
}

func (ig *Integrator) unsplitMomentum(blk *block.Block, tl1, tl2 *block.TimeLevel, dt float64) {
	m := blk.Mesh
	for e := 0; e < m.NEdges; e++ {
		nk := m.MaxLevelEdgeTop[e]
		for k := 0; k < nk; k++ {
			u := tl1.NormalVelocity.At(e, k)
			u += dt * ig.baroclinicTendency(blk, e, k, nk, u)
			tl2.NormalVelocity.Set(e, k, u)
			tl2.NormalBaroclinicVelocity.Set(e, k, u)
		}
		tl2.NormalBarotropicVelocity[e] = 0
	}
}

func (ig *Integrator) splitMomentum(blk *block.Block, tl1, tl2 *block.TimeLevel, dt float64) {
	m := blk.Mesh
	hEdge := blk.Diag.LayerThicknessEdge
	for e := 0; e < m.NEdges; e++ {
		nk := m.MaxLevelEdgeTop[e]
		var depth float64
		for k := 0; k < nk; k++ {
			depth += hEdge.At(e, k)
		}
		if depth <= 0 {
			continue
		}

		ub := tl1.NormalBarotropicVelocity[e]
		force := blk.Forcing.SurfaceWindStress[e] / (ig.rho0 * depth)
		sub := dt / float64(ig.subcycles)
		for i := 0; i < ig.subcycles; i++ {
			ub += sub * (force - ig.btrDrag*ub)
		}

		var mean float64
		for k := 0; k < nk; k++ {
			bc := tl1.NormalBaroclinicVelocity.At(e, k)
			bc += dt * (ig.baroclinicTendency(blk, e, k, nk, tl1.NormalVelocity.At(e, k)) - force)
			tl2.NormalBaroclinicVelocity.Set(e, k, bc)
			mean += hEdge.At(e, k) * bc
		}
		mean /= depth
		ub += mean
		tl2.NormalBarotropicVelocity[e] = ub
		for k := 0; k < nk; k++ {
			bc := tl2.NormalBaroclinicVelocity.At(e, k) - mean
			tl2.NormalBaroclinicVelocity.Set(e, k, bc)
			tl2.NormalVelocity.Set(e, k, ub+bc)
		}
	}
}

func (ig *Integrator) tracers(blk *block.Block, tl1, tl2 *block.TimeLevel, dt float64) {
	m := blk.Mesh
	frc := blk.Forcing
	trans := frc.TransmissionCoefficients
	h := tl1.LayerThickness
	for c := 0; c < m.NCells; c++ {
		nk := m.MaxLevelCell[c]
		if nk == 0 {
			continue
		}
		heat := frc.SurfaceTracerFlux[block.Temperature][c]
		for k := 0; k < nk; k++ {
			frac := trans.At(c, k)
			if k < nk-1 {
				frac -= trans.At(c, k+1)
			}
			t := tl1.Tracers[block.Temperature].At(c, k) + dt*heat*frac/h.At(c, k)
			tl2.Tracers[block.Temperature].Set(c, k, t)
		}
		s := tl1.Tracers[block.Salinity].At(c, 0) + dt*frc.SurfaceTracerFlux[block.Salinity][c]/h.At(c, 0)
		tl2.Tracers[block.Salinity].Set(c, 0, s)
	}
}

// refresh recomputes the diagnostics of the new time level.
func (ig *Integrator) refresh(blk *block.Block, tl *block.TimeLevel) error {
	if err := ig.collab.Diagnostics.Solve(blk, tl); err != nil {
		return err
	}
	if ig.gm {
		if err := ig.collab.Bolus.Compute(blk, tl); err != nil {
			return err
		}
	}
	ocean.UpdateTransportVelocity(blk, tl, ig.gm)
	return ig.collab.Reconstructor.Reconstruct(blk, tl)
}
