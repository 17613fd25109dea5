package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/internal/testutil"
)

func TestBolusComputer_FlowsDownThicknessGradient(t *testing.T) {
	// GIVEN a top layer 10 m thicker east of an interior edge
	cfg := testutil.SmallConfig(t.TempDir())
	cfg.GMEnable = true
	blocks, _ := initialized(t, cfg, 1)
	blk := blocks[0]
	tl := blk.State.Current()
	tl.LayerThickness.Set(eastCell, 0, 30)
	require.NoError(t, NewDiagnosticSolver(cfg).Solve(blk, tl))

	// WHEN the Bolus velocity is computed
	require.NoError(t, NewBolusComputer(cfg).Compute(blk, tl))

	// THEN it points west with kappa * gradient / edge thickness
	bolus := blk.Diag.BolusVelocity
	assert.InDelta(t, -cfg.GMKappa*(10/cfg.Mesh.Dc)/25, bolus.At(interiorU, 0), 1e-15)
	assert.Zero(t, bolus.At(interiorU, 1), "flat interfaces below")
	assert.Zero(t, bolus.At(wallV, 0), "wall edges carry no flow")
}

func TestBolusComputer_ZeroKappa(t *testing.T) {
	cfg := testutil.SmallConfig(t.TempDir())
	cfg.GMEnable = true
	cfg.GMKappa = 0
	blocks, _ := initialized(t, cfg, 1)
	blk := blocks[0]
	tl := blk.State.Current()
	tl.LayerThickness.Set(eastCell, 0, 30)
	require.NoError(t, NewBolusComputer(cfg).Compute(blk, tl))
	for _, v := range blk.Diag.BolusVelocity.Data {
		assert.Zero(t, v)
	}
}
