package process

import (
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// BolusComputer is the thickness-diffusion form of the Gent-McWilliams
// parameterization: the Bolus velocity flattens layer interfaces by moving
// thickness down its gradient,
//
//	u* = -kappa * (h2 - h1) / dc / hEdge
//
// on every active level of an interior edge. Edge thickness comes from the
// most recent diagnostic solve.
type BolusComputer struct {
	kappa float64
}

func NewBolusComputer(cfg *config.Config) *BolusComputer {
	return &BolusComputer{kappa: cfg.GMKappa}
}

func (b *BolusComputer) Compute(blk *block.Block, tl *block.TimeLevel) error {
	m := blk.Mesh
	bolus := blk.Diag.BolusVelocity
	bolus.Fill(0)
	for e := 0; e < m.NEdges; e++ {
		c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			hEdge := blk.Diag.LayerThicknessEdge.At(e, k)
			if hEdge <= 0 {
				continue
			}
			grad := (tl.LayerThickness.At(c2, k) - tl.LayerThickness.At(c1, k)) / m.DcEdge[e]
			bolus.Set(e, k, -b.kappa*grad/hEdge)
		}
	}
	return nil
}
