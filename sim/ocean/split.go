package ocean

import (
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// SplitInitialVelocity decomposes the current normal velocity of a cold
// start into barotropic and baroclinic parts, then copies the current time
// level into every level.
//
// Unsplit integrators carry no barotropic mode. The split-explicit
// integrator takes the barotropic velocity of an edge as the
// thickness-weighted column mean over its active levels, with the edge
// thickness taken as the mean of the two adjoining cells; levels below the
// column are zeroed in both velocities. With the barotropic filter on, the
// decomposition is discarded: baroclinic velocity is the full normal
// velocity and, when configured, the top layer is reset to its reference
// thickness.
func SplitInitialVelocity(blk *block.Block, cfg *config.Config) {
	m := blk.Mesh
	tl := blk.State.Current()
	u, bc, btr := tl.NormalVelocity, tl.NormalBaroclinicVelocity, tl.NormalBarotropicVelocity

	switch {
	case cfg.TimeIntegrator != config.SplitExplicit:
		clear(btr)
		bc.CopyFrom(u)

	case cfg.FilterBtrMode:
		clear(btr)
		bc.CopyFrom(u)
		if cfg.BtrResetThickness {
			for c := 0; c < m.NCells; c++ {
				if m.MaxLevelCell[c] > 0 {
					tl.LayerThickness.Set(c, 0, m.RefBottomDepth[0])
				}
			}
		}

	default:
		for e := 0; e < m.NEdges; e++ {
			c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
			top := m.MaxLevelEdgeTop[e]
			var sum, thickness float64
			for k := 0; k < top; k++ {
				h := 0.5 * (tl.LayerThickness.At(c1, k) + tl.LayerThickness.At(c2, k))
				sum += h * u.At(e, k)
				thickness += h
			}
			btr[e] = 0
			if thickness > 0 {
				btr[e] = sum / thickness
			}
			for k := 0; k < top; k++ {
				bc.Set(e, k, u.At(e, k)-btr[e])
			}
			for k := top; k < m.NVertLevels; k++ {
				u.Set(e, k, 0)
				bc.Set(e, k, 0)
			}
		}
	}

	blk.State.SnapshotToAll()
}
