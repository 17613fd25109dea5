package process

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ocean-sim/ocean-sim/internal/testutil"
	"github.com/ocean-sim/ocean-sim/sim/block"
)

func TestColdStart_AnalyticProfile(t *testing.T) {
	// GIVEN a cold start without perturbation
	cfg := testutil.SmallConfig(t.TempDir())
	cfg.InitialState.Perturbation = 0
	blocks := testutil.Blocks(t, cfg, 1)
	ColdStart(blocks, cfg)
	blk := blocks[0]
	tl := blk.State.Current()
	ic := cfg.InitialState

	// THEN thickness is the reference layering and temperature an exponential thermocline
	assert.Equal(t, []float64{20, 40, 80}, tl.LayerThickness.Row(westCell))
	for k, zMid := range []float64{10, 40, 100} {
		want := ic.DeepTemperature + (ic.SurfaceTemperature-ic.DeepTemperature)*math.Exp(-zMid/ic.ThermoclineDepth)
		assert.InDelta(t, want, tl.Tracers[block.Temperature].At(westCell, k), 1e-12, "level %d", k)
		assert.Equal(t, ic.Salinity, tl.Tracers[block.Salinity].At(westCell, k))
	}
	assert.Zero(t, tl.SSH[westCell])

	// AND levels below a column are zero
	assert.Equal(t, []float64{20, 40, 0}, tl.LayerThickness.Row(wallCell))
	assert.Zero(t, tl.Tracers[block.Salinity].At(wallCell, 2))

	// AND the zonal jet peaks mid-channel and has no meridional part
	width := float64(cfg.Mesh.NY) * cfg.Mesh.Dc
	y := 3.5 * cfg.Mesh.Dc
	jet := ic.JetSpeed * math.Exp(-math.Pow((y-width/2)/(width/4), 2))
	assert.InDelta(t, jet, tl.NormalVelocity.At(interiorU, 0), 1e-15)
	assert.Equal(t, tl.NormalVelocity.At(interiorU, 0), tl.NormalVelocity.At(interiorU, 2), "depth independent")
	assert.InDelta(t, 0, tl.NormalVelocity.At(interiorV, 0), 1e-15)
	assert.Zero(t, tl.NormalVelocity.At(wallV, 0))
	assert.Greater(t, tl.NormalVelocity.At(interiorU, 0), tl.NormalVelocity.At(shelfU, 0))
}

func TestColdStart_PerturbationIsKeyedByCell(t *testing.T) {
	cfg := testutil.SmallConfig(t.TempDir())
	temperatures := func(n int) map[int][]float64 {
		blocks := testutil.Blocks(t, cfg, n)
		ColdStart(blocks, cfg)
		out := make(map[int][]float64)
		for _, blk := range blocks {
			// halo copies must agree with the owner as well
			for c := 0; c < blk.Mesh.NCells; c++ {
				id := blk.Mesh.CellID[c]
				row := blk.State.Current().Tracers[block.Temperature].Row(c)
				if prev, ok := out[id]; ok {
					assert.Equal(t, prev, row, "cell %d", id)
				}
				out[id] = row
			}
		}
		return out
	}

	one := temperatures(1)
	assert.Equal(t, one, temperatures(4))

	// AND the noise stays within the configured amplitude
	smooth := *cfg
	smooth.InitialState.Perturbation = 0
	blocks := testutil.Blocks(t, &smooth, 1)
	ColdStart(blocks, &smooth)
	base := blocks[0].State.Current().Tracers[block.Temperature]
	var differs bool
	for id, row := range one {
		for k, v := range row {
			d := math.Abs(v - base.At(id, k))
			assert.LessOrEqual(t, d, cfg.InitialState.Perturbation)
			differs = differs || d > 0
		}
	}
	assert.True(t, differs)
}
