package process

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/internal/testutil"
)

func TestReconstructor_RecoversUniformFlow(t *testing.T) {
	// GIVEN edge normal velocities sampled from a uniform vector (0.3, -0.1)
	cfg := testutil.SmallConfig(t.TempDir())
	blocks, _ := initialized(t, cfg, 1)
	blk := blocks[0]
	m := blk.Mesh
	tl := blk.State.Current()
	const ux, uy = 0.3, -0.1
	for e := 0; e < m.NEdges; e++ {
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			a := m.AngleEdge[e]
			tl.NormalVelocity.Set(e, k, ux*math.Cos(a)+uy*math.Sin(a))
		}
	}

	// WHEN the cell vectors are reconstructed
	r := &Reconstructor{}
	require.NoError(t, r.Init(blk))
	require.NoError(t, r.Reconstruct(blk, tl))

	// THEN interior columns recover the vector on every active level
	d := blk.Diag
	for k := 0; k < 3; k++ {
		assert.InDelta(t, ux, d.VelocityX.At(westCell, k), 1e-12, "level %d", k)
		assert.InDelta(t, uy, d.VelocityY.At(westCell, k), 1e-12, "level %d", k)
		assert.Equal(t, d.VelocityX.At(westCell, k), d.VelocityZonal.At(westCell, k))
		assert.Equal(t, d.VelocityY.At(westCell, k), d.VelocityMeridional.At(westCell, k))
		assert.Zero(t, d.VelocityZ.At(westCell, k))
	}

	// AND levels below a column are zero
	assert.Zero(t, d.VelocityX.At(wallCell, 2))
	for c := 0; c < m.NCells; c++ {
		assert.True(t, blk.Ops.ReconstructValid[c], "cell %d", c)
	}
}

func TestReconstructor_HaloCellsWithoutNeighbours(t *testing.T) {
	// GIVEN a partition whose outermost halo cells lose edges past the halo
	cfg := testutil.SmallConfig(t.TempDir())
	cfg.HaloLayers = 1
	cfg.AdvOrder = 2
	blocks, _ := initialized(t, cfg, 3)

	// THEN every cell still has either a valid fit or a zero vector
	for _, blk := range blocks {
		m := blk.Mesh
		for c := 0; c < m.NCells; c++ {
			if !blk.Ops.ReconstructValid[c] {
				assert.Zero(t, blk.Diag.VelocityX.At(c, 0), "block %d cell %d", blk.ID, c)
			}
		}
		for c := 0; c < m.OwnedCells; c++ {
			assert.True(t, blk.Ops.ReconstructValid[c], "owned cell %d of block %d", c, blk.ID)
		}
	}
}
