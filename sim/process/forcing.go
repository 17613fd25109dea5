package process

import (
	"math"
	"time"

	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// ForcingBuilder projects the block's wind stress onto edge normals,
// restores surface tracers toward fixed values with a piston velocity, and
// attenuates shortwave penetration exponentially with depth.
type ForcingBuilder struct {
	cfg config.ForcingConfig
}

func NewForcingBuilder(cfg *config.Config) *ForcingBuilder {
	return &ForcingBuilder{cfg: cfg.Forcing}
}

// SeedForcing loads the configured wind stress into every block. The input
// stream may replace it later.
func SeedForcing(blocks []*block.Block, cfg *config.Config) {
	for _, blk := range blocks {
		blk.Forcing.WindStressX = cfg.Forcing.WindStressX
		blk.Forcing.WindStressY = cfg.Forcing.WindStressY
	}
}

func (f *ForcingBuilder) Build(blk *block.Block, _ time.Time) error {
	m := blk.Mesh
	frc := blk.Forcing
	tl := blk.State.Current()

	for e := 0; e < m.NEdges; e++ {
		frc.SurfaceWindStress[e] = 0
		if m.MaxLevelEdgeTop[e] > 0 {
			a := m.AngleEdge[e]
			frc.SurfaceWindStress[e] = frc.WindStressX*math.Cos(a) + frc.WindStressY*math.Sin(a)
		}
	}

	restore := [block.NumTracers]float64{
		block.Temperature: f.cfg.RestoringTemperature,
		block.Salinity:    f.cfg.RestoringSalinity,
	}
	trans := frc.TransmissionCoefficients
	for c := 0; c < m.NCells; c++ {
		nk := m.MaxLevelCell[c]
		for i := range frc.SurfaceTracerFlux {
			frc.SurfaceTracerFlux[i][c] = 0
			if nk > 0 {
				frc.SurfaceTracerFlux[i][c] = f.cfg.PistonVelocity * (restore[i] - tl.Tracers[i].At(c, 0))
			}
		}

		depth := 0.0
		for k := 0; k <= m.NVertLevels; k++ {
			v := 0.0
			if k <= nk && nk > 0 {
				v = f.transmission(depth)
			}
			trans.Set(c, k, v)
			if k < nk {
				depth += tl.LayerThickness.At(c, k)
			}
		}
	}
	return nil
}

// transmission is the fraction of surface shortwave reaching depth.
func (f *ForcingBuilder) transmission(depth float64) float64 {
	if f.cfg.ShortwaveDepth <= 0 {
		if depth == 0 {
			return 1
		}
		return 0
	}
	return math.Exp(-depth / f.cfg.ShortwaveDepth)
}
