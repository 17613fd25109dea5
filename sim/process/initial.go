package process

import (
	"math"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// ColdStart writes the analytic initial state into the current time level
// of every block: reference layer thicknesses, an exponential thermocline,
// uniform salinity, a flat sea surface and a Gaussian zonal jet centred in
// the channel. The optional temperature perturbation is drawn per column
// from an RNG keyed by global cell id, so every decomposition sees the same
// field.
func ColdStart(blocks []*block.Block, cfg *config.Config) {
	ic := cfg.InitialState
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(ic.Seed))
	width := float64(cfg.Mesh.NY) * cfg.Mesh.Dc
	for _, blk := range blocks {
		m := blk.Mesh
		tl := blk.State.Current()
		for c := 0; c < m.NCells; c++ {
			column := rng.ForSubsystem(sim.SubsystemCell(m.CellID[c]))
			tl.SSH[c] = 0
			depth := 0.0
			for k := 0; k < m.NVertLevels; k++ {
				noise := 2*column.Float64() - 1
				if k >= m.MaxLevelCell[c] {
					tl.LayerThickness.Set(c, k, 0)
					tl.Tracers[block.Temperature].Set(c, k, 0)
					tl.Tracers[block.Salinity].Set(c, k, 0)
					continue
				}
				h := m.RefLayerThickness[k]
				zMid := depth + 0.5*h
				depth += h
				t := ic.DeepTemperature + (ic.SurfaceTemperature-ic.DeepTemperature)*thermocline(zMid, ic.ThermoclineDepth)
				tl.LayerThickness.Set(c, k, h)
				tl.Tracers[block.Temperature].Set(c, k, t+ic.Perturbation*noise)
				tl.Tracers[block.Salinity].Set(c, k, ic.Salinity)
			}
		}
		for e := 0; e < m.NEdges; e++ {
			y := edgeY(blk, e)
			jet := ic.JetSpeed * math.Cos(m.AngleEdge[e]) * math.Exp(-sq((y-width/2)/(width/4)))
			for k := 0; k < m.NVertLevels; k++ {
				u := 0.0
				if k < m.MaxLevelEdgeTop[e] {
					u = jet
				}
				tl.NormalVelocity.Set(e, k, u)
			}
		}
	}
}

func thermocline(z, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return math.Exp(-z / scale)
}

// edgeY is the y coordinate of an edge midpoint.
func edgeY(blk *block.Block, e int) float64 {
	m := blk.Mesh
	var y float64
	var n int
	for _, c := range m.CellsOnEdge[e] {
		if c >= 0 {
			y += m.YCell[c]
			n++
		}
	}
	return y / float64(n)
}

func sq(x float64) float64 { return x * x }
